package classify

// Confidence weights.
const (
	trivialConfidence  = 95.0
	baseConfidence     = 50.0
	corroboratedBonus  = 25.0
	singlePatternBonus = 15.0
	multiPatternBonus  = 5.0
	ambiguityPenalty   = 10.0
	earlyExitPenalty   = 5.0
	warningPenalty     = 5.0

	maxEarlyExitPenalties = 2
	maxWarningPenalties   = 3
)

// evidence is what the structural analysis could and could not establish.
type evidence struct {
	trivial      bool
	corroborated bool // every structure on the dominant path has a recognized bound
	patterns     int  // independent structures reaching the reported class
	ambiguities  int
	earlyExits   int
	warnings     int
}

// score turns evidence into a confidence in [0, 100]. Corroboration never
// lowers the score, and neither does removing an ambiguity, early exit or
// warning. A class reached by several independent structures earns a smaller
// bonus than one reached by a single structure, since the bound then rests on
// which of them dominates.
func score(e evidence) float64 {
	if e.trivial {
		return clamp(trivialConfidence - warningPenalty*float64(min(e.warnings, 1)))
	}

	s := baseConfidence
	if e.corroborated {
		s += corroboratedBonus
	}
	if e.patterns <= 1 {
		s += singlePatternBonus
	} else {
		s += multiPatternBonus
	}
	s -= ambiguityPenalty * float64(e.ambiguities)
	s -= earlyExitPenalty * float64(min(e.earlyExits, maxEarlyExitPenalties))
	s -= warningPenalty * float64(min(e.warnings, maxWarningPenalties))
	return clamp(s)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
