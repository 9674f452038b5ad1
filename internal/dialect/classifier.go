package dialect

import "fmt"

// Classification is the result of scoring evidence for a unit.
type Classification struct {
	Kind            Kind
	Score           int
	TotalScore      int
	Confidence      float64
	RunnerUp        Kind
	RunnerUpScore   int
	ObservedSignals int
}

// Classifier scores evidence and chooses a dominant dialect.
// Callers apply their own thresholds.
type Classifier struct{}

func (Classifier) Classify(e *Evidence) Classification {
	if e == nil || len(e.hints) == 0 {
		return Classification{Kind: Unknown}
	}

	var scores [kindCount]int
	total := 0
	observed := 0
	for _, h := range e.hints {
		observed++
		if h.Score <= 0 {
			continue
		}
		if h.Dialect <= Unknown || h.Dialect >= kindCount {
			continue
		}
		scores[h.Dialect] += h.Score
		total += h.Score
	}

	bestKind := Unknown
	bestScore := 0
	runnerKind := Unknown
	runnerScore := 0
	for k := Perl; k < kindCount; k++ {
		score := scores[k]
		if score > bestScore {
			runnerKind, runnerScore = bestKind, bestScore
			bestKind, bestScore = k, score
			continue
		}
		if score > runnerScore {
			runnerKind, runnerScore = k, score
		}
	}

	conf := 0.0
	if total > 0 {
		conf = float64(bestScore) / float64(total)
	}

	return Classification{
		Kind:            bestKind,
		Score:           bestScore,
		TotalScore:      total,
		Confidence:      conf,
		RunnerUp:        runnerKind,
		RunnerUpScore:   runnerScore,
		ObservedSignals: observed,
	}
}

// minPerlConfidence: below it a unit is reported as not looking like Perl.
const minPerlConfidence = 0.5

// LooksForeign reports whether c suggests the unit is not Perl. Units with
// too little evidence either way are given the benefit of the doubt.
func (c Classification) LooksForeign() bool {
	if c.TotalScore < 6 {
		return false
	}
	return c.Kind != Perl || c.Confidence < minPerlConfidence
}

// Describe renders the warning text for a foreign-looking unit.
func (c Classification) Describe() string {
	if c.Kind == Perl {
		return fmt.Sprintf("unit looks only %.0f%% like Perl (runner-up: %s); conversion may be meaningless",
			c.Confidence*100, c.RunnerUp)
	}
	return fmt.Sprintf("unit looks like %s rather than Perl (%.0f%% of %d evidence points); conversion may be meaningless",
		c.Kind, c.Confidence*100, c.TotalScore)
}
