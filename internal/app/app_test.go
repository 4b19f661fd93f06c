package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/voxtrace/internal/config"
	"github.com/rbright/voxtrace/internal/embedding"
)

func TestExecuteHelp(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "Usage:")
	require.Contains(t, stdout.String(), "voxtrace")
	require.Empty(t, stderr.String())
}

func TestExecuteNoArgsShowsHelp(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), nil, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "Usage:")
}

func TestExecuteVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"--version"}, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.NotEmpty(t, stdout.String())
}

func TestExecuteUnknownCommand(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"transcode"}, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "unknown command")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestBuildExtractorStrategies(t *testing.T) {
	t.Parallel()

	base := config.Default().Embedding

	for _, strategy := range []string{"auto", "model", "spectral"} {
		cfg := base
		cfg.Strategy = strategy
		ex, err := buildExtractor(cfg)
		require.NoError(t, err, strategy)
		require.NotNil(t, ex, strategy)
	}

	cfg := base
	cfg.Strategy = "onnx"
	_, err := buildExtractor(cfg)
	require.Error(t, err)
}

func TestBuildExtractorSpectralIsDegraded(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Embedding
	cfg.Strategy = "spectral"
	ex, err := buildExtractor(cfg)
	require.NoError(t, err)

	result, err := ex.Embed(context.Background(), make([]int16, 16000))
	require.NoError(t, err)
	require.True(t, result.Degraded)
	require.Len(t, result.Vector, embedding.SpectralDimensions)
}

func TestBuildPipeline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(dir, "voxtrace.sqlite")
	cfg.Archive.LocalRoot = filepath.Join(dir, "archive")
	cfg.Embedding.Strategy = "spectral"

	p, st, cleanup, err := buildPipeline(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, st)
	cleanup()
}

func TestBuildPipelineRejectsBadAggressiveness(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(dir, "voxtrace.sqlite")
	cfg.Archive.LocalRoot = filepath.Join(dir, "archive")
	cfg.VAD.Aggressiveness = 9

	_, _, _, err := buildPipeline(cfg, nil)
	require.Error(t, err)
}
