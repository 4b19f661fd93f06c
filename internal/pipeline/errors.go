package pipeline

import "errors"

// Error kinds surfaced per utterance or, for store failures, for the
// remainder of a buffer.
var (
	ErrAdapterUnavailable = errors.New("model adapter unavailable")
	ErrAdapterTimeout     = errors.New("model adapter timed out")
	ErrInvalidAudio       = errors.New("invalid audio buffer")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrResolutionRace     = errors.New("speaker resolution conflict")
)

// Stage names the pipeline step an outcome failed in.
type Stage string

const (
	StageSegment    Stage = "segment"
	StageEmbed      Stage = "embed"
	StageResolve    Stage = "resolve"
	StageTranscribe Stage = "transcribe"
	StageArchive    Stage = "archive"
	StagePersist    Stage = "persist"
)
