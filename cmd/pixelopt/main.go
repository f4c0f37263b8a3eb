package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dunamismax/pixelopt/internal/config"
	"github.com/dunamismax/pixelopt/internal/domain"
	"github.com/dunamismax/pixelopt/internal/pipeline"
	"github.com/dunamismax/pixelopt/internal/runner"
	"github.com/dunamismax/pixelopt/internal/telemetry"
	"github.com/spf13/cobra"
)

func main() {
	logger := log.New(os.Stderr, "[pixelopt] ", log.LstdFlags|log.Lmsgprefix)
	if err := newRootCmd(logger, os.Stdout).Execute(); err != nil {
		logger.Printf("error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd(logger *log.Logger, stdout io.Writer) *cobra.Command {
	var (
		widths  []int
		quality float64
		encoder string
	)

	v := config.New(logger)

	cmd := &cobra.Command{
		Use:   "pixelopt <image>",
		Short: "Resize and re-encode an image into optimized variants",
		Long: `Writes one file per requested width into an "optimized" directory next to
the source image, named <stem>_<width>[_<quality>].<ext>. Without widths the
source is re-encoded once at its own size.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("widths") && !flags.Changed("quality") {
				return fmt.Errorf("%w: either widths or quality must be provided", domain.ErrConfiguration)
			}

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			req := runner.Request{SourcePath: args[0], Widths: widths}
			if flags.Changed("quality") {
				req.Quality = &quality
			}
			if flags.Changed("encoder") {
				enc, err := domain.ParseEncoder(encoder)
				if err != nil {
					return err
				}
				req.Encoder = &enc
			}

			return run(cmd.Context(), logger, stdout, cfg, req)
		},
	}

	flags := cmd.Flags()
	flags.IntSliceVarP(&widths, "widths", "w", nil, "target widths, comma separated or repeated")
	flags.Float64VarP(&quality, "quality", "q", domain.DefaultQuality, "lossy quality from 0 to 100")
	flags.StringVarP(&encoder, "encoder", "e", string(domain.DefaultEncoder), "lossy encoder: baseline or webp")
	flags.String("scale-policy", string(domain.ScaleTruncate), "height rounding: truncate or proportional")
	flags.String("metrics-file", "", "write Prometheus textfile metrics to this path")
	flags.String("trace-exporter", "none", "trace exporter: none, stdout or otlp")

	_ = v.BindPFlag(config.KeyScalePolicy, flags.Lookup("scale-policy"))
	_ = v.BindPFlag(config.KeyMetricsFile, flags.Lookup("metrics-file"))
	_ = v.BindPFlag(config.KeyTraceExporter, flags.Lookup("trace-exporter"))

	return cmd
}

func run(ctx context.Context, logger *log.Logger, stdout io.Writer, cfg config.Config, req runner.Request) error {
	if ctx == nil {
		ctx = context.Background()
	}

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:  "pixelopt",
		Exporter:     cfg.Telemetry.TraceExporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
		Writer:       logger.Writer(),
	}, logger)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Printf("tracing shutdown failed: %v", err)
		}
	}()

	if err := pipeline.Startup(); err != nil {
		return fmt.Errorf("start image backend: %w", err)
	}
	defer pipeline.Shutdown()

	r, err := runner.NewLocal(logger, cfg)
	if err != nil {
		return err
	}

	result, _, err := r.Run(ctx, req)
	for _, out := range result.Outputs {
		fmt.Fprintf(stdout, "%s\t%dx%d\t%d bytes\n", out.Path, out.Width, out.Height, out.Bytes)
	}
	return err
}
