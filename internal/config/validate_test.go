package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	t.Parallel()

	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty store path", func(c *Config) { c.Store.Path = " " }, "store.path"},
		{"unknown archive backend", func(c *Config) { c.Archive.Backend = "gcs" }, "archive.backend"},
		{"local without root", func(c *Config) { c.Archive.LocalRoot = "" }, "archive.local_root"},
		{"s3 without bucket", func(c *Config) {
			c.Archive.Backend = "s3"
			c.Archive.S3Region = "us-east-1"
		}, "archive.s3_bucket"},
		{"s3 without region", func(c *Config) {
			c.Archive.Backend = "s3"
			c.Archive.S3Bucket = "voice-archive"
		}, "archive.s3_region"},
		{"empty stt url", func(c *Config) { c.STT.URL = "" }, "stt.url"},
		{"zero stt timeout", func(c *Config) { c.STT.TimeoutMS = 0 }, "stt.timeout_ms"},
		{"bad embedding strategy", func(c *Config) { c.Embedding.Strategy = "onnx" }, "embedding.strategy"},
		{"model strategy without url", func(c *Config) {
			c.Embedding.Strategy = "model"
			c.Embedding.URL = ""
		}, "embedding.url"},
		{"zero embedding dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }, "embedding.dimensions"},
		{"threshold above one", func(c *Config) { c.Speaker.Threshold = 1.5 }, "speaker.threshold"},
		{"threshold zero", func(c *Config) { c.Speaker.Threshold = 0 }, "speaker.threshold"},
		{"refresh weight above one", func(c *Config) { c.Speaker.RefreshWeight = 1.2 }, "speaker.refresh_weight"},
		{"vad aggressiveness out of range", func(c *Config) { c.VAD.Aggressiveness = 4 }, "vad.aggressiveness"},
		{"negative padding", func(c *Config) { c.Segmenter.PaddingMS = -1 }, "segmenter.padding_ms"},
		{"zero max duration", func(c *Config) { c.Segmenter.MaxDurationMS = 0 }, "segmenter.max_duration_ms"},
		{"max below min", func(c *Config) {
			c.Segmenter.MinDurationMS = 2000
			c.Segmenter.MaxDurationMS = 1000
		}, "segmenter.max_duration_ms"},
		{"bad long spans policy", func(c *Config) { c.Segmenter.LongSpans = "split" }, "segmenter.long_spans"},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }, "pipeline.workers"},
		{"zero queue depth", func(c *Config) { c.Pipeline.QueueDepth = 0 }, "pipeline.queue_depth"},
		{"empty server addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateSpectralStrategyAllowsEmptyURL(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Embedding.Strategy = "spectral"
	cfg.Embedding.URL = ""

	_, err := Validate(cfg)
	require.NoError(t, err)
}

func TestValidateWarnsOnExcessiveWorkers(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Pipeline.Workers = 100

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "unusually high")
}
