package vad

import (
	"fmt"
	"math"
)

// Energy is a deterministic RMS-energy frame classifier. Aggressiveness maps
// 0-3 (least to most aggressive non-speech filtering) to an RMS floor and a
// zero-crossing-rate ceiling: quiet frames and noise-like high-ZCR frames are
// rejected more readily at higher settings.
type Energy struct {
	rmsFloor   float64
	zcrCeiling float64
}

// energyProfiles indexes RMS floor (fraction of full scale) and ZCR ceiling
// (crossings per sample) by aggressiveness.
var energyProfiles = [4]struct {
	rms float64
	zcr float64
}{
	{rms: 0.0050, zcr: 0.50},
	{rms: 0.0100, zcr: 0.40},
	{rms: 0.0175, zcr: 0.35},
	{rms: 0.0250, zcr: 0.30},
}

// NewEnergy builds an Energy classifier for an aggressiveness in [0,3].
func NewEnergy(aggressiveness int) (*Energy, error) {
	if aggressiveness < 0 || aggressiveness > 3 {
		return nil, fmt.Errorf("vad aggressiveness %d out of range [0,3]", aggressiveness)
	}
	profile := energyProfiles[aggressiveness]
	return &Energy{rmsFloor: profile.rms, zcrCeiling: profile.zcr}, nil
}

// Classify reports whether the frame's RMS energy clears the floor while its
// zero-crossing rate stays below the noise ceiling.
func (e *Energy) Classify(frame []int16) (bool, error) {
	if len(frame) == 0 {
		return false, fmt.Errorf("empty classifier frame")
	}

	var sumSquares float64
	crossings := 0
	for i, s := range frame {
		v := float64(s) / 32768.0
		sumSquares += v * v
		if i > 0 && (frame[i-1] < 0) != (s < 0) {
			crossings++
		}
	}

	rms := math.Sqrt(sumSquares / float64(len(frame)))
	zcr := float64(crossings) / float64(len(frame))

	return rms >= e.rmsFloor && zcr <= e.zcrCeiling, nil
}
