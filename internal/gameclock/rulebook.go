package gameclock

// Rulebook decides when a period at or beyond the fourth quarter ends
// the game. The clock never sees scores, so tie-breaking lives with the
// caller: a sudden-death or modern-overtime policy closes over its own
// score context and answers here.
type Rulebook interface {
	// GameOver is consulted when a period at quarter >= 4 reaches zero.
	GameOver(s State) bool
}

// RulebookFunc adapts a plain function to the Rulebook interface.
type RulebookFunc func(s State) bool

func (f RulebookFunc) GameOver(s State) bool { return f(s) }

// RegulationRulebook ends the game after the fourth quarter with no
// overtime. Useful as a default and in tests.
type RegulationRulebook struct{}

func (RegulationRulebook) GameOver(s State) bool { return s.Quarter >= 4 }
