// Package pipeline orchestrates the per-buffer processing flow: segmentation,
// speaker resolution, transcription, and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/voxtrace/internal/archive"
	"github.com/rbright/voxtrace/internal/audio"
	"github.com/rbright/voxtrace/internal/embedding"
	"github.com/rbright/voxtrace/internal/segment"
	"github.com/rbright/voxtrace/internal/speaker"
	"github.com/rbright/voxtrace/internal/store"
	"github.com/rbright/voxtrace/internal/stt"
	"github.com/rbright/voxtrace/internal/transcript"
	"github.com/rbright/voxtrace/internal/vad"
)

// Store is the persistence surface the pipeline needs. *store.Store
// satisfies it; tests substitute fakes.
type Store interface {
	ListSpeakers(ctx context.Context) ([]store.Speaker, error)
	CreateSpeaker(ctx context.Context, embedding []byte, seen time.Time) (store.Speaker, error)
	RefreshSpeaker(ctx context.Context, speakerID string, embedding []byte, seen time.Time) error
	InsertMessage(ctx context.Context, msg store.VoiceMessage) (int64, error)
}

// Config carries the tunables the orchestrator applies per buffer.
type Config struct {
	Segmenter     segment.Config
	Threshold     float64
	RefreshWeight float64
	EmbedTimeout  time.Duration
	STTTimeout    time.Duration
}

// DefaultConfig mirrors the shipped configuration defaults.
func DefaultConfig() Config {
	return Config{
		Segmenter:     segment.Default(),
		Threshold:     speaker.DefaultThreshold,
		RefreshWeight: 0.30,
		EmbedTimeout:  10 * time.Second,
		STTTimeout:    30 * time.Second,
	}
}

// Pipeline processes audio buffers end to end. Safe for concurrent Process
// calls: the resolve-then-create section is serialized by mu so two workers
// hearing the same unknown voice cannot both enroll it.
type Pipeline struct {
	logger     *slog.Logger
	classifier vad.Classifier
	extractor  embedding.Extractor
	transcribe stt.Transcriber
	archive    archive.Archive
	store      Store
	cfg        Config

	mu sync.Mutex
}

// New wires an orchestrator. All dependencies are required except logger,
// which falls back to slog.Default().
func New(
	logger *slog.Logger,
	classifier vad.Classifier,
	extractor embedding.Extractor,
	transcriber stt.Transcriber,
	arch archive.Archive,
	st Store,
	cfg Config,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:     logger,
		classifier: classifier,
		extractor:  extractor,
		transcribe: transcriber,
		archive:    arch,
		store:      st,
		cfg:        cfg,
	}
}

// Process segments buf and runs every detected utterance through the full
// flow. Adapter failures mark the single utterance failed and processing
// continues; store failures abort the remainder. The outcomes committed
// before an abort are returned alongside the error.
func (p *Pipeline) Process(ctx context.Context, buf audio.Buffer) ([]Outcome, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("process: empty buffer: %w", ErrInvalidAudio)
	}

	spans, err := segment.Segment(buf, p.classifier, p.cfg.Segmenter)
	if err != nil {
		return nil, fmt.Errorf("process: segment: %w", classifierError(err))
	}
	p.logger.Info("buffer segmented",
		slog.Float64("buffer_seconds", buf.Seconds()),
		slog.Int("utterances", len(spans)))

	outcomes := make([]Outcome, 0, len(spans))
	for i, span := range spans {
		if ctx.Err() != nil {
			return outcomes, ctx.Err()
		}

		outcome, storeErr := p.processUtterance(ctx, buf, i, span)
		outcomes = append(outcomes, outcome)
		if storeErr != nil {
			return outcomes, storeErr
		}

		if outcome.OK {
			p.logger.Info("utterance processed",
				slog.Int("utterance_index", i),
				slog.String("speaker_id", outcome.SpeakerID),
				slog.Bool("new_speaker", outcome.NewSpeaker),
				slog.Bool("degraded_embedding", outcome.Degraded),
				slog.Float64("duration_s", outcome.EndSeconds-outcome.StartSeconds))
		} else {
			p.logger.Warn("utterance failed",
				slog.Int("utterance_index", i),
				slog.String("stage", string(outcome.FailedStage)),
				slog.String("error", outcome.Error))
		}
	}
	return outcomes, nil
}

// processUtterance runs one span through embed → resolve → transcribe →
// archive → persist. The returned error is non-nil only for store failures,
// which abort the batch.
func (p *Pipeline) processUtterance(ctx context.Context, buf audio.Buffer, index int, span segment.Span) (Outcome, error) {
	start, end := span.StartSeconds(), span.EndSeconds()
	samples := []int16(buf[span.Start:span.End])

	embedCtx, cancelEmbed := context.WithTimeout(ctx, p.cfg.EmbedTimeout)
	result, err := p.extractor.Embed(embedCtx, samples)
	cancelEmbed()
	if err != nil {
		return failedOutcome(index, start, end, StageEmbed, adapterError(err)), nil
	}
	vector := speaker.Normalize(append([]float32(nil), result.Vector...))

	decision, sp, created, err := p.resolveSpeaker(ctx, vector, time.Now())
	if err != nil {
		if errors.Is(err, ErrResolutionRace) {
			return failedOutcome(index, start, end, StageResolve, err), nil
		}
		return failedOutcome(index, start, end, StageResolve, err),
			fmt.Errorf("process: resolve speaker: %w", err)
	}

	sttCtx, cancelSTT := context.WithTimeout(ctx, p.cfg.STTTimeout)
	tr, err := p.transcribe.Transcribe(sttCtx, samples)
	cancelSTT()
	if err != nil {
		o := failedOutcome(index, start, end, StageTranscribe, adapterError(err))
		o.SpeakerID = sp.SpeakerID
		o.NewSpeaker = created
		return o, nil
	}
	tr.Text = transcript.Clean(tr.Text)

	wav := audio.EncodeWAV(audio.Buffer(samples))
	ref, err := p.archive.Store(ctx, wav, sp.SpeakerID)
	if err != nil {
		o := failedOutcome(index, start, end, StageArchive, err)
		o.SpeakerID = sp.SpeakerID
		o.NewSpeaker = created
		return o, nil
	}

	msgID, err := p.store.InsertMessage(ctx, store.VoiceMessage{
		SpeakerRef:    sp.ID,
		ArchiveRef:    ref,
		Duration:      end - start,
		Language:      tr.Language,
		Transcription: tr.Text,
		Confidence:    tr.Confidence,
		Timestamp:     time.Now(),
	})
	if err != nil {
		o := failedOutcome(index, start, end, StagePersist, ErrStoreUnavailable)
		o.SpeakerID = sp.SpeakerID
		o.NewSpeaker = created
		return o, fmt.Errorf("process: insert message: %w: %v", ErrStoreUnavailable, err)
	}

	return Outcome{
		UtteranceIndex: index,
		StartSeconds:   start,
		EndSeconds:     end,
		OK:             true,
		SpeakerID:      sp.SpeakerID,
		NewSpeaker:     created,
		Similarity:     decision.Similarity,
		Degraded:       result.Degraded,
		Transcription:  tr.Text,
		Language:       tr.Language,
		Confidence:     tr.Confidence,
		ArchiveRef:     ref,
		MessageID:      msgID,
	}, nil
}

// resolveSpeaker matches the vector against enrolled speakers and either
// refreshes the match or enrolls a new speaker. Held under mu so the read and
// the write are one atomic step across workers.
func (p *Pipeline) resolveSpeaker(ctx context.Context, vector []float32, seen time.Time) (speaker.Decision, store.Speaker, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	speakers, err := p.store.ListSpeakers(ctx)
	if err != nil {
		return speaker.Decision{}, store.Speaker{}, false,
			fmt.Errorf("%w: list speakers: %v", ErrStoreUnavailable, err)
	}

	known := make([]speaker.Known, 0, len(speakers))
	byID := make(map[string]store.Speaker, len(speakers))
	for _, sp := range speakers {
		stored, err := speaker.DecodeEmbedding(sp.Embedding)
		if err != nil {
			p.logger.Warn("skipping speaker with undecodable embedding",
				slog.String("speaker_id", sp.SpeakerID), slog.String("error", err.Error()))
			continue
		}
		known = append(known, speaker.Known{ID: sp.SpeakerID, Vector: stored, LastSeen: sp.LastSeen})
		byID[sp.SpeakerID] = sp
	}

	decision := speaker.Resolve(vector, known, p.cfg.Threshold)
	if decision.Match {
		matched := byID[decision.SpeakerID]
		stored, _ := speaker.DecodeEmbedding(matched.Embedding)
		refreshed := speaker.Refresh(stored, vector, p.cfg.RefreshWeight)
		if err := p.store.RefreshSpeaker(ctx, matched.SpeakerID, speaker.EncodeEmbedding(refreshed), seen); err != nil {
			return decision, store.Speaker{}, false,
				fmt.Errorf("%w: refresh speaker: %v", ErrStoreUnavailable, err)
		}
		matched.LastSeen = seen
		return decision, matched, false, nil
	}

	created, err := p.store.CreateSpeaker(ctx, speaker.EncodeEmbedding(vector), seen)
	if err != nil {
		if isUniqueViolation(err) {
			return decision, store.Speaker{}, false,
				fmt.Errorf("%w: %v", ErrResolutionRace, err)
		}
		return decision, store.Speaker{}, false,
			fmt.Errorf("%w: create speaker: %v", ErrStoreUnavailable, err)
	}
	return decision, created, true, nil
}

// classifierError maps frame-classifier failures onto adapter error kinds.
// The classifier is a model adapter like the others: a crashed or unloaded
// engine must stay distinguishable from malformed audio.
func classifierError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrAdapterTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrAdapterUnavailable, err)
}

// adapterError maps adapter sentinels onto pipeline error kinds.
func adapterError(err error) error {
	switch {
	case errors.Is(err, stt.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrAdapterTimeout, err)
	case errors.Is(err, stt.ErrUnavailable), errors.Is(err, embedding.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrAdapterUnavailable, err)
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
