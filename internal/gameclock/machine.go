package gameclock

// Machine derives the next clock snapshot from the previous one and the
// outcome of a resolved play. It is a pure computation: no I/O, no
// mutation, safe to use for any number of games as long as each game
// carries its own State chain.
type Machine struct {
	rules Rulebook
}

// NewMachine builds a machine with the given overtime policy. A nil
// rulebook falls back to regulation-only play.
func NewMachine(rules Rulebook) *Machine {
	if rules == nil {
		rules = RegulationRulebook{}
	}
	return &Machine{rules: rules}
}

// Result carries the next snapshot plus the per-transition signals that
// are not part of durable clock state.
type Result struct {
	State State

	// QuarterEnding signals that the period reached zero; the caller
	// must invoke StartNextQuarter before the next play.
	QuarterEnding bool

	// GameEnding signals that the rulebook declared the game over as
	// the fourth quarter or an overtime period expired.
	GameEnding bool

	// ExcessTimeout flags a timeout request from a team with none
	// remaining. The clock still stops; penalty assessment is the
	// caller's concern.
	ExcessTimeout bool

	// ClockWillStartOnSnap reports that the stoppage holds the clock
	// until the next snap rather than the ready-for-play whistle.
	ClockWillStartOnSnap bool
}

// NewGame returns the opening snapshot: first quarter, full clock,
// clock running, full timeout allotments, no warning taken.
func NewGame() State {
	return State{
		Quarter:          1,
		SecondsRemaining: QuarterSeconds,
		Running:          true,
		StopReason:       ReasonNone,
		HomeTimeouts:     TimeoutsPerHalf,
		AwayTimeouts:     TimeoutsPerHalf,
	}
}

// Advance applies one resolved play to the clock. elapsed is the game
// time the play consumed, outcome classifies any natural stoppage
// (ReasonNone means the clock keeps running), and timeoutBy optionally
// names a team calling a timeout during the ensuing dead ball.
//
// The input snapshot is validated first; a violation means the caller's
// chain is corrupt and the returned error is an *InvalidStateError.
func (m *Machine) Advance(s State, elapsed int, outcome StopReason, timeoutBy *Team) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	if elapsed < 0 {
		return Result{}, &InvalidStateError{Field: "seconds_elapsed", Detail: "must be non-negative"}
	}
	if !validReasons[outcome] {
		return Result{}, &InvalidStateError{Field: "outcome", Detail: "unknown stop reason " + string(outcome)}
	}

	next := s
	next.SecondsRemaining = s.SecondsRemaining - elapsed
	if next.SecondsRemaining < 0 {
		next.SecondsRemaining = 0
	}

	// The warning injects only while time remains; an expiring quarter
	// swallows it.
	warningDue := (s.Quarter == 2 || s.Quarter == 4) &&
		!s.WarningFired && s.Running &&
		s.SecondsRemaining > TwoMinuteThreshold &&
		next.SecondsRemaining <= TwoMinuteThreshold &&
		next.SecondsRemaining > 0

	var res Result
	granted := false
	if timeoutBy != nil {
		if s.Timeouts(*timeoutBy) > 0 {
			granted = true
			if *timeoutBy == Home {
				next.HomeTimeouts--
			} else {
				next.AwayTimeouts--
			}
		} else {
			res.ExcessTimeout = true
		}
	}

	quarterOver := next.SecondsRemaining == 0
	if quarterOver {
		res.QuarterEnding = true
		if s.Quarter >= 4 && m.rules.GameOver(next) {
			res.GameEnding = true
		}
	}

	stopped := quarterOver || warningDue || outcome.Stops() || timeoutBy != nil
	next.Running = s.Running && !stopped

	switch {
	case warningDue:
		next.StopReason = ReasonTwoMinuteWarning
		next.WarningFired = true
	case outcome.Stops():
		next.StopReason = outcome
	case timeoutBy != nil:
		next.StopReason = ReasonTimeout
	case res.GameEnding:
		next.StopReason = ReasonEndOfGame
	case quarterOver:
		next.StopReason = ReasonEndOfQuarter
	default:
		// A play resolved with nothing stopping the clock; whatever
		// stoppage preceded the snap no longer applies.
		next.StopReason = ReasonNone
	}

	if !next.Running && !quarterOver {
		r := next.StopReason
		res.ClockWillStartOnSnap = r.Administrative() ||
			(r.StartsOnSnapInsideTwo() && next.InsideTwoMinutes())
	}

	res.State = next
	return res, nil
}

// StartNextQuarter opens the following period once Advance has signaled
// QuarterEnding. The clock resets to a full quarter and holds until the
// opening snap. Crossing halftime restores timeout allotments and the
// two-minute warning; so does entering overtime, which opens a fresh
// half for allotment purposes.
func (m *Machine) StartNextQuarter(s State) (State, error) {
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	if s.SecondsRemaining != 0 {
		return State{}, &InvalidStateError{Field: "seconds_remaining", Detail: "quarter has not ended"}
	}

	next := s
	next.Quarter = s.Quarter + 1
	next.SecondsRemaining = QuarterSeconds
	next.Running = false
	next.StopReason = ReasonNone

	if next.Quarter == 3 || next.Quarter == 5 {
		next.HomeTimeouts = TimeoutsPerHalf
		next.AwayTimeouts = TimeoutsPerHalf
		next.WarningFired = false
	}
	return next, nil
}

// Resume records the snap that restarts a stopped clock. Resuming a
// running clock is a no-op.
func (m *Machine) Resume(s State) (State, error) {
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	next := s
	next.Running = true
	next.StopReason = ReasonNone
	return next, nil
}
