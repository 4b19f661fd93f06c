package speaker

import "time"

// DefaultThreshold is the cosine-similarity floor for treating a candidate
// embedding as a returning speaker.
const DefaultThreshold = 0.75

// Known is one stored speaker identity presented to the resolver.
type Known struct {
	ID       string
	Vector   []float32
	LastSeen time.Time
}

// Decision is the resolver output: either a match against an existing
// speaker or a request for a new identity.
type Decision struct {
	Match      bool
	SpeakerID  string
	Similarity float64
}

// Resolve compares the candidate against every known speaker and decides
// "same speaker" or "new speaker". The best similarity wins; ties at equal
// similarity break to the most recently seen speaker. Resolve is a pure
// function so fixed embedding sets replay deterministically; creating the
// new identity is the orchestrator's job.
func Resolve(candidate []float32, known []Known, threshold float64) Decision {
	var (
		bestID   string
		bestSim  float64
		bestSeen time.Time
	)

	for i, k := range known {
		sim := Cosine(candidate, k.Vector)
		better := i == 0 ||
			sim > bestSim ||
			(sim == bestSim && k.LastSeen.After(bestSeen))
		if better {
			bestID = k.ID
			bestSim = sim
			bestSeen = k.LastSeen
		}
	}

	if bestID == "" || bestSim < threshold {
		return Decision{Match: false, Similarity: bestSim}
	}
	return Decision{Match: true, SpeakerID: bestID, Similarity: bestSim}
}
