package gameclock

import "fmt"

// QuarterSeconds is the regulation length of one period.
const QuarterSeconds = 900

// TwoMinuteThreshold is the remaining time at which the two-minute
// warning is due in the second and fourth quarters.
const TwoMinuteThreshold = 120

// TimeoutsPerHalf is each team's allotment, restored at halftime.
const TimeoutsPerHalf = 3

// Phase groups quarters into the halves that scope timeout allotments
// and the two-minute warning.
type Phase string

const (
	FirstHalf  Phase = "first_half"
	SecondHalf Phase = "second_half"
	Overtime   Phase = "overtime"
)

// State is one immutable snapshot of the game clock. A new value is
// produced per play; existing values are never mutated. Build one with
// NewState or let a Machine derive the next from the previous.
type State struct {
	Quarter          int
	SecondsRemaining int
	Running          bool
	StopReason       StopReason
	HomeTimeouts     int
	AwayTimeouts     int
	// WarningFired latches once the two-minute warning has been taken
	// this half. Cleared at halftime and when overtime begins.
	WarningFired bool
}

// InvalidStateError reports a snapshot that violates a clock invariant.
// It always indicates a caller bug; the chain must not continue from it.
type InvalidStateError struct {
	Field  string
	Detail string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid clock state: %s: %s", e.Field, e.Detail)
}

// NewState builds a validated snapshot. All field combinations that
// violate the clock invariants are rejected here rather than repaired.
func NewState(quarter, secondsRemaining int, running bool, reason StopReason, homeTimeouts, awayTimeouts int, warningFired bool) (State, error) {
	s := State{
		Quarter:          quarter,
		SecondsRemaining: secondsRemaining,
		Running:          running,
		StopReason:       reason,
		HomeTimeouts:     homeTimeouts,
		AwayTimeouts:     awayTimeouts,
		WarningFired:     warningFired,
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}

// Validate checks the snapshot against the clock invariants.
func (s State) Validate() error {
	if s.Quarter < 1 {
		return &InvalidStateError{Field: "quarter", Detail: fmt.Sprintf("must be >= 1, got %d", s.Quarter)}
	}
	if s.SecondsRemaining < 0 || s.SecondsRemaining > QuarterSeconds {
		return &InvalidStateError{Field: "seconds_remaining", Detail: fmt.Sprintf("must be in [0, %d], got %d", QuarterSeconds, s.SecondsRemaining)}
	}
	if s.HomeTimeouts < 0 || s.HomeTimeouts > TimeoutsPerHalf {
		return &InvalidStateError{Field: "home_timeouts", Detail: fmt.Sprintf("must be in [0, %d], got %d", TimeoutsPerHalf, s.HomeTimeouts)}
	}
	if s.AwayTimeouts < 0 || s.AwayTimeouts > TimeoutsPerHalf {
		return &InvalidStateError{Field: "away_timeouts", Detail: fmt.Sprintf("must be in [0, %d], got %d", TimeoutsPerHalf, s.AwayTimeouts)}
	}
	if !validReasons[s.StopReason] {
		return &InvalidStateError{Field: "stop_reason", Detail: fmt.Sprintf("unknown reason %q", string(s.StopReason))}
	}
	if s.StopReason.Stops() && s.Running {
		return &InvalidStateError{Field: "stop_reason", Detail: "reason set while clock is running"}
	}
	return nil
}

// Phase is derived from the quarter alone. It is never stored or
// accepted as input, so it cannot disagree with the quarter.
func (s State) Phase() Phase {
	switch {
	case s.Quarter <= 2:
		return FirstHalf
	case s.Quarter <= 4:
		return SecondHalf
	default:
		return Overtime
	}
}

// Timeouts returns the remaining timeout count for a team.
func (s State) Timeouts(team Team) int {
	if team == Home {
		return s.HomeTimeouts
	}
	return s.AwayTimeouts
}

// InsideTwoMinutes reports whether the snapshot sits in the final two
// minutes of the second or fourth quarter. Overtime periods have no
// two-minute warning window of their own.
func (s State) InsideTwoMinutes() bool {
	return (s.Quarter == 2 || s.Quarter == 4) && s.SecondsRemaining <= TwoMinuteThreshold
}

// Clock renders the remaining time as "MM:SS" for display.
func (s State) Clock() string {
	return fmt.Sprintf("%02d:%02d", s.SecondsRemaining/60, s.SecondsRemaining%60)
}
