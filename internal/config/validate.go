package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Store.Path) == "" {
		return nil, fmt.Errorf("store.path must not be empty")
	}

	switch cfg.Archive.Backend {
	case "local":
		if strings.TrimSpace(cfg.Archive.LocalRoot) == "" {
			return nil, fmt.Errorf("archive.local_root must not be empty when archive.backend=local")
		}
	case "s3":
		if strings.TrimSpace(cfg.Archive.S3Bucket) == "" {
			return nil, fmt.Errorf("archive.s3_bucket must not be empty when archive.backend=s3")
		}
		if strings.TrimSpace(cfg.Archive.S3Region) == "" {
			return nil, fmt.Errorf("archive.s3_region must not be empty when archive.backend=s3")
		}
	default:
		return nil, fmt.Errorf("archive.backend must be one of: local, s3")
	}

	if strings.TrimSpace(cfg.STT.URL) == "" {
		return nil, fmt.Errorf("stt.url must not be empty")
	}
	if cfg.STT.TimeoutMS <= 0 {
		return nil, fmt.Errorf("stt.timeout_ms must be > 0")
	}

	switch cfg.Embedding.Strategy {
	case "auto", "model", "spectral":
	default:
		return nil, fmt.Errorf("embedding.strategy must be one of: auto, model, spectral")
	}
	if cfg.Embedding.Strategy != "spectral" && strings.TrimSpace(cfg.Embedding.URL) == "" {
		return nil, fmt.Errorf("embedding.url must not be empty when embedding.strategy=%s", cfg.Embedding.Strategy)
	}
	if cfg.Embedding.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding.dimensions must be > 0")
	}
	if cfg.Embedding.TimeoutMS <= 0 {
		return nil, fmt.Errorf("embedding.timeout_ms must be > 0")
	}

	if cfg.Speaker.Threshold <= 0 || cfg.Speaker.Threshold > 1 {
		return nil, fmt.Errorf("speaker.threshold must be in (0, 1]")
	}
	if cfg.Speaker.RefreshWeight < 0 || cfg.Speaker.RefreshWeight > 1 {
		return nil, fmt.Errorf("speaker.refresh_weight must be in [0, 1]")
	}

	if cfg.VAD.Aggressiveness < 0 || cfg.VAD.Aggressiveness > 3 {
		return nil, fmt.Errorf("vad.aggressiveness must be in [0, 3]")
	}

	if cfg.Segmenter.PaddingMS < 0 {
		return nil, fmt.Errorf("segmenter.padding_ms must be >= 0")
	}
	if cfg.Segmenter.MergeGapMS < 0 {
		return nil, fmt.Errorf("segmenter.merge_gap_ms must be >= 0")
	}
	if cfg.Segmenter.MinDurationMS < 0 {
		return nil, fmt.Errorf("segmenter.min_duration_ms must be >= 0")
	}
	if cfg.Segmenter.MaxDurationMS <= 0 {
		return nil, fmt.Errorf("segmenter.max_duration_ms must be > 0")
	}
	if cfg.Segmenter.MaxDurationMS < cfg.Segmenter.MinDurationMS {
		return nil, fmt.Errorf("segmenter.max_duration_ms must be >= segmenter.min_duration_ms")
	}
	switch cfg.Segmenter.LongSpans {
	case "truncate", "drop":
	default:
		return nil, fmt.Errorf("segmenter.long_spans must be one of: truncate, drop")
	}

	if cfg.Pipeline.Workers < 1 {
		return nil, fmt.Errorf("pipeline.workers must be >= 1")
	}
	if cfg.Pipeline.Workers > 64 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("pipeline.workers=%d is unusually high", cfg.Pipeline.Workers),
		})
	}
	if cfg.Pipeline.QueueDepth < 1 {
		return nil, fmt.Errorf("pipeline.queue_depth must be >= 1")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return nil, fmt.Errorf("server.addr must not be empty")
	}

	return warnings, nil
}
