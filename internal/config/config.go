package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dunamismax/pixelopt/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Defaults  DefaultsConfig
	Telemetry TelemetryConfig
}

type DefaultsConfig struct {
	Quality     float64
	Encoder     domain.Encoder
	ScalePolicy domain.ScalePolicy
}

type TelemetryConfig struct {
	TraceExporter string
	OTLPEndpoint  string
	OTLPInsecure  bool
	MetricsFile   string
}

const (
	KeyDefaultQuality = "PIXELOPT_DEFAULT_QUALITY"
	KeyDefaultEncoder = "PIXELOPT_DEFAULT_ENCODER"
	KeyScalePolicy    = "PIXELOPT_SCALE_POLICY"
	KeyTraceExporter  = "PIXELOPT_TRACE_EXPORTER"
	KeyOTLPEndpoint   = "PIXELOPT_OTLP_ENDPOINT"
	KeyOTLPInsecure   = "PIXELOPT_OTLP_INSECURE"
	KeyMetricsFile    = "PIXELOPT_METRICS_FILE"
)

// New returns a viper instance with defaults, environment lookup and an
// optional .env file in the working directory.
func New(logger *log.Logger) *viper.Viper {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) && logger != nil {
		logger.Printf("ignoring .env: %v", err)
	}

	v := viper.New()
	v.SetDefault(KeyDefaultQuality, domain.DefaultQuality)
	v.SetDefault(KeyDefaultEncoder, string(domain.DefaultEncoder))
	v.SetDefault(KeyScalePolicy, string(domain.ScaleTruncate))
	v.SetDefault(KeyTraceExporter, "none")
	v.SetDefault(KeyOTLPEndpoint, "")
	v.SetDefault(KeyOTLPInsecure, false)
	v.SetDefault(KeyMetricsFile, "")
	v.AutomaticEnv()
	return v
}

// Load resolves the configuration from v. Flags bound to v take precedence
// over the environment.
func Load(v *viper.Viper) (Config, error) {
	quality := v.GetFloat64(KeyDefaultQuality)
	if quality < 0 || quality > 100 {
		return Config{}, fmt.Errorf("%s must be within [0, 100], got %v", KeyDefaultQuality, quality)
	}

	encoder, err := domain.ParseEncoder(v.GetString(KeyDefaultEncoder))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyDefaultEncoder, err)
	}

	policy, err := domain.ParseScalePolicy(v.GetString(KeyScalePolicy))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyScalePolicy, err)
	}

	exporter := strings.ToLower(strings.TrimSpace(v.GetString(KeyTraceExporter)))
	switch exporter {
	case "", "none", "stdout", "otlp":
	default:
		return Config{}, fmt.Errorf("%s: unsupported trace exporter %q", KeyTraceExporter, exporter)
	}
	if exporter == "otlp" && strings.TrimSpace(v.GetString(KeyOTLPEndpoint)) == "" {
		return Config{}, fmt.Errorf("%s is required when %s=otlp", KeyOTLPEndpoint, KeyTraceExporter)
	}

	return Config{
		Defaults: DefaultsConfig{
			Quality:     quality,
			Encoder:     encoder,
			ScalePolicy: policy,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: exporter,
			OTLPEndpoint:  v.GetString(KeyOTLPEndpoint),
			OTLPInsecure:  v.GetBool(KeyOTLPInsecure),
			MetricsFile:   strings.TrimSpace(v.GetString(KeyMetricsFile)),
		},
	}, nil
}
