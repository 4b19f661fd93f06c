// Package archive stores raw utterance audio alongside the relational
// records, addressed by opaque references.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Archive persists WAV payloads and hands back a reference that can later
// load or delete the same payload.
type Archive interface {
	Store(ctx context.Context, wav []byte, speakerID string) (string, error)
	Load(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// objectName builds the per-speaker object path. The uuid suffix keeps
// same-second utterances from colliding.
func objectName(speakerID string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%s.wav",
		speakerID, now.UTC().Format("20060102T150405"), uuid.NewString()[:8])
}
