package config

import (
	"os"
	"path/filepath"
)

// Default returns the canonical runtime configuration used when no file is
// present.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Path: filepath.Join(dataDir(), "voxtrace.sqlite"),
		},
		Archive: ArchiveConfig{
			Backend:   "local",
			LocalRoot: filepath.Join(dataDir(), "archive"),
			S3Region:  "us-east-1",
		},
		STT: STTConfig{
			URL:       "http://127.0.0.1:8080/inference",
			Language:  "",
			TimeoutMS: 30000,
		},
		Embedding: EmbeddingConfig{
			Strategy:   "auto",
			URL:        "http://127.0.0.1:8081/embed",
			Dimensions: 192,
			TimeoutMS:  10000,
		},
		Speaker: SpeakerConfig{
			Threshold:     0.75,
			RefreshWeight: 0.30,
		},
		VAD: VADConfig{Aggressiveness: 2},
		Segmenter: SegmenterConfig{
			PaddingMS:     300,
			MergeGapMS:    1000,
			MinDurationMS: 500,
			MaxDurationMS: 30000,
			LongSpans:     "truncate",
		},
		Pipeline: PipelineConfig{
			Workers:    4,
			QueueDepth: 16,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8764"},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Debug: DebugConfig{},
	}
}

// dataDir resolves the XDG data directory for voxtrace artifacts.
func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "voxtrace")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "voxtrace-data"
	}
	return filepath.Join(home, ".local", "share", "voxtrace")
}
