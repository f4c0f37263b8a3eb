package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/dunamismax/pixelopt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalOptimizer_ResizeAndCompressBaseline(t *testing.T) {
	tmp := t.TempDir()
	inputPath := filepath.Join(tmp, "photo.jpg")
	writeJPEGSource(t, inputPath, 800, 600)

	src, err := LocalFileDecoder{}.Decode(context.Background(), inputPath)
	require.NoError(t, err)
	require.Equal(t, 800, src.Width)
	require.Equal(t, 600, src.Height)

	plan, err := domain.NewPlanBuilder(inputPath, src.Width, src.Height).
		Widths(400, 200).
		Quality(80).
		Encoder(domain.EncoderBaseline).
		Build()
	require.NoError(t, err)

	optimizer, err := NewLocalOptimizer()
	require.NoError(t, err)

	result, err := optimizer.Process(context.Background(), plan, src)
	require.NoError(t, err)
	require.Len(t, result.Outputs, 2)

	outDir := filepath.Join(tmp, OutputDirName)
	assert.Equal(t, []string{"photo_200_80.jpg", "photo_400_80.jpg"}, listDir(t, outDir))

	want := map[string][2]int{
		"photo_400_80.jpg": {400, 300},
		"photo_200_80.jpg": {200, 150},
	}
	for i, name := range []string{"photo_400_80.jpg", "photo_200_80.jpg"} {
		path := filepath.Join(outDir, name)
		assert.Equal(t, path, result.Outputs[i].Path)
		assert.Equal(t, "jpeg", result.Outputs[i].Format)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())

		img, format := decodeFile(t, path)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, want[name][0], img.Bounds().Dx())
		assert.Equal(t, want[name][1], img.Bounds().Dy())
	}
}

func TestLocalOptimizer_CompressOnlyWebP(t *testing.T) {
	tmp := t.TempDir()
	inputPath := filepath.Join(tmp, "photo.jpg")
	writeJPEGSource(t, inputPath, 800, 600)

	src, err := LocalFileDecoder{}.Decode(context.Background(), inputPath)
	require.NoError(t, err)

	plan, err := domain.NewPlanBuilder(inputPath, src.Width, src.Height).
		Quality(90).
		Encoder(domain.EncoderWebP).
		Build()
	require.NoError(t, err)

	optimizer, err := NewLocalOptimizer()
	require.NoError(t, err)

	result, err := optimizer.Process(context.Background(), plan, src)
	require.NoError(t, err)
	require.Len(t, result.Outputs, 1)
	assert.False(t, result.Outputs[0].Resized)

	outDir := filepath.Join(tmp, OutputDirName)
	assert.Equal(t, []string{"photo_800_90.webp"}, listDir(t, outDir))

	img, format := decodeFile(t, filepath.Join(outDir, "photo_800_90.webp"))
	assert.Equal(t, "webp", format)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestLocalOptimizer_ResizeOnlyResavesSourceContainer(t *testing.T) {
	tmp := t.TempDir()
	inputPath := filepath.Join(tmp, "scan.png")
	plan := domain.Plan{
		SourcePath: inputPath,
		Targets:    []domain.TargetSpec{{Width: 60, Height: 30}},
	}

	optimizer, err := NewLocalOptimizer()
	require.NoError(t, err)

	result, err := optimizer.Process(context.Background(), plan, gradientSource(t, 120, 60))
	require.NoError(t, err)
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, "png", result.Outputs[0].Format)

	img, format := decodeFile(t, filepath.Join(tmp, OutputDirName, "scan_60.png"))
	assert.Equal(t, "png", format)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}

func TestOptimizer_NothingToDoTouchesNothing(t *testing.T) {
	tmp := t.TempDir()
	emitter := &recordingEmitter{}
	optimizer := NewOptimizer(stdlibTransformer{}, emitter)

	_, err := optimizer.Process(context.Background(), domain.Plan{SourcePath: filepath.Join(tmp, "a.png")}, gradientSource(t, 8, 8))
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Empty(t, emitter.paths)

	_, statErr := os.Stat(filepath.Join(tmp, OutputDirName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOptimizer_RejectsMalformedSource(t *testing.T) {
	optimizer := NewOptimizer(stdlibTransformer{}, &recordingEmitter{})
	plan := domain.Plan{
		SourcePath:  "a/b.jpg",
		Compression: &domain.CompressionConfig{Quality: 80, Encoder: domain.EncoderBaseline},
	}

	_, err := optimizer.Process(context.Background(), plan, domain.SourceImage{Pix: make([]byte, 7), Width: 2, Height: 2})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestOptimizer_RejectsTargetLargerThanSource(t *testing.T) {
	emitter := &recordingEmitter{}
	optimizer := NewOptimizer(panickingTransformer{}, emitter)
	plan := domain.Plan{
		SourcePath: filepath.Join("in", "a.png"),
		Targets:    []domain.TargetSpec{{Width: 8, Height: 4}, {Width: 32, Height: 16}},
	}

	result, err := optimizer.Process(context.Background(), plan, gradientSource(t, 16, 8))
	require.ErrorIs(t, err, domain.ErrInvalidTarget)
	assert.Empty(t, result.Outputs)
	assert.Empty(t, emitter.paths)
}

func TestOptimizer_KeepsOrderAndDuplicates(t *testing.T) {
	emitter := &recordingEmitter{}
	optimizer := NewOptimizer(stdlibTransformer{}, emitter)
	plan := domain.Plan{
		SourcePath:  filepath.Join("in", "a.png"),
		Targets:     []domain.TargetSpec{{Width: 8, Height: 4}, {Width: 4, Height: 2}, {Width: 8, Height: 4}},
		Compression: &domain.CompressionConfig{Quality: 50, Encoder: domain.EncoderWebP},
	}

	result, err := optimizer.Process(context.Background(), plan, gradientSource(t, 16, 8))
	require.NoError(t, err)
	require.Len(t, result.Outputs, 3)

	dir := filepath.Join("in", OutputDirName)
	assert.Equal(t, []string{
		filepath.Join(dir, "a_8_50.webp"),
		filepath.Join(dir, "a_4_50.webp"),
		filepath.Join(dir, "a_8_50.webp"),
	}, emitter.paths)
}

func TestOptimizer_FailFastKeepsEarlierOutputs(t *testing.T) {
	emitter := &recordingEmitter{failOn: 2}
	optimizer := NewOptimizer(stdlibTransformer{}, emitter)
	plan := domain.Plan{
		SourcePath:  filepath.Join("in", "a.jpg"),
		Targets:     []domain.TargetSpec{{Width: 8, Height: 4}, {Width: 4, Height: 2}, {Width: 2, Height: 1}},
		Compression: &domain.CompressionConfig{Quality: 70, Encoder: domain.EncoderBaseline},
	}

	result, err := optimizer.Process(context.Background(), plan, gradientSource(t, 16, 8))
	require.ErrorIs(t, err, domain.ErrIO)

	var verr *domain.VariantError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 4, verr.Width)
	assert.Equal(t, filepath.Join("in", OutputDirName, "a_4_70.jpg"), verr.Path)

	require.Len(t, result.Outputs, 1)
	assert.Equal(t, 8, result.Outputs[0].Width)
	assert.Len(t, emitter.paths, 1)
}

func TestOptimizer_PathErrorBeforeResize(t *testing.T) {
	optimizer := NewOptimizer(panickingTransformer{}, &recordingEmitter{})
	plan := domain.Plan{
		SourcePath: filepath.Join("in", "noext"),
		Targets:    []domain.TargetSpec{{Width: 2, Height: 1}},
	}

	_, err := optimizer.Process(context.Background(), plan, gradientSource(t, 4, 2))
	assert.ErrorIs(t, err, domain.ErrPath)
}

type recordingEmitter struct {
	failOn int
	paths  []string
}

func (e *recordingEmitter) Emit(_ context.Context, path string, data []byte) error {
	if e.failOn > 0 && len(e.paths)+1 == e.failOn {
		return errors.Join(domain.ErrIO, errors.New("disk full"))
	}
	if len(data) == 0 {
		return errors.New("empty variant")
	}
	e.paths = append(e.paths, path)
	return nil
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
