package pipeline

// Outcome records the fate of one detected utterance. Failed utterances keep
// their span bounds and failing stage so callers can report them without
// aborting the batch.
type Outcome struct {
	UtteranceIndex int     `json:"utterance_index"`
	StartSeconds   float64 `json:"start_seconds"`
	EndSeconds     float64 `json:"end_seconds"`
	OK             bool    `json:"ok"`

	SpeakerID  string `json:"speaker_id,omitempty"`
	NewSpeaker bool   `json:"new_speaker,omitempty"`
	// Similarity and Confidence keep zero values in JSON: 0 is a legitimate
	// score, distinct from the ConfidenceUnknown sentinel.
	Similarity float64 `json:"similarity"`
	Degraded   bool    `json:"degraded_embedding,omitempty"`

	Transcription string  `json:"transcription,omitempty"`
	Language      string  `json:"language,omitempty"`
	Confidence    float64 `json:"confidence"`

	ArchiveRef string `json:"archive_ref,omitempty"`
	MessageID  int64  `json:"message_id,omitempty"`

	FailedStage Stage  `json:"failed_stage,omitempty"`
	Error       string `json:"error,omitempty"`
}

func failedOutcome(index int, start, end float64, stage Stage, err error) Outcome {
	return Outcome{
		UtteranceIndex: index,
		StartSeconds:   start,
		EndSeconds:     end,
		FailedStage:    stage,
		Error:          err.Error(),
	}
}
