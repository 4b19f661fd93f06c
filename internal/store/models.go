package store

import "time"

// Speaker is one enrolled voiceprint. Embedding holds the little-endian
// float32 encoding of the stored vector.
type Speaker struct {
	ID        int64
	SpeakerID string
	Embedding []byte
	FirstSeen time.Time
	LastSeen  time.Time
}

// VoiceMessage is one persisted utterance. Notes is the only mutable column.
type VoiceMessage struct {
	ID            int64
	SpeakerRef    int64
	SpeakerID     string
	ArchiveRef    string
	Duration      float64
	Language      string
	Transcription string
	Confidence    float64
	Timestamp     time.Time
	Notes         string
}

// SpeakerSummary is the per-speaker aggregate exposed by the speakers API.
type SpeakerSummary struct {
	SpeakerID    string
	FirstSeen    time.Time
	LastSeen     time.Time
	MessageCount int64
}

// Stats holds corpus-wide totals.
type Stats struct {
	Messages      int64
	Speakers      int64
	Languages     int64
	TotalDuration float64
}
