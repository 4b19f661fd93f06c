// Package config resolves, parses, validates, and defaults voxtrace
// configuration.
package config

// Config is the fully materialized runtime configuration used by voxtrace.
type Config struct {
	Store     StoreConfig
	Archive   ArchiveConfig
	STT       STTConfig
	Embedding EmbeddingConfig
	Speaker   SpeakerConfig
	VAD       VADConfig
	Segmenter SegmenterConfig
	Pipeline  PipelineConfig
	Server    ServerConfig
	Audio     AudioConfig
	Debug     DebugConfig
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string
}

// ArchiveConfig selects and parameterizes the audio archive backend.
type ArchiveConfig struct {
	Backend    string
	LocalRoot  string
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string
}

// STTConfig points at the whisper-server endpoint.
type STTConfig struct {
	URL       string
	Language  string
	TimeoutMS int
}

// EmbeddingConfig selects the voiceprint extraction strategy.
type EmbeddingConfig struct {
	Strategy   string
	URL        string
	Dimensions int
	TimeoutMS  int
}

// SpeakerConfig tunes identity resolution.
type SpeakerConfig struct {
	Threshold     float64
	RefreshWeight float64
}

// VADConfig tunes the frame classifier.
type VADConfig struct {
	Aggressiveness int
}

// SegmenterConfig tunes utterance boundary detection.
type SegmenterConfig struct {
	PaddingMS     int
	MergeGapMS    int
	MinDurationMS int
	MaxDurationMS int
	LongSpans     string
}

// PipelineConfig sizes the worker pool.
type PipelineConfig struct {
	Workers    int
	QueueDepth int
}

// ServerConfig controls the HTTP/WS listener.
type ServerConfig struct {
	Addr string
}

// AudioConfig controls preferred and fallback input-source selection for
// live capture.
type AudioConfig struct {
	Input    string
	Fallback string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	DumpAudio bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
