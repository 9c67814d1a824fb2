package gameclock

import "fmt"

// Team identifies one side of the game for timeout accounting.
type Team string

const (
	Home Team = "Home"
	Away Team = "Away"
)

// StopReason classifies why the game clock stopped after a play.
// The zero value ReasonNone means the clock keeps running.
type StopReason string

const (
	ReasonNone               StopReason = ""
	ReasonIncompletePass     StopReason = "incomplete_pass"
	ReasonOutOfBounds        StopReason = "out_of_bounds"
	ReasonTimeout            StopReason = "timeout"
	ReasonInjury             StopReason = "injury"
	ReasonPenalty            StopReason = "penalty"
	ReasonMeasurement        StopReason = "measurement"
	ReasonScore              StopReason = "score"
	ReasonTurnover           StopReason = "turnover"
	ReasonTwoMinuteWarning   StopReason = "two_minute_warning"
	ReasonEndOfQuarter       StopReason = "end_of_quarter"
	ReasonEndOfGame          StopReason = "end_of_game"
	ReasonTVTimeout          StopReason = "tv_timeout"
	ReasonPossessionChange   StopReason = "change_of_possession"
	ReasonFirstDownInsideTwo StopReason = "first_down_inside_two"
	ReasonSpike              StopReason = "spike"
	ReasonKneel              StopReason = "kneel"
)

var validReasons = map[StopReason]bool{
	ReasonNone:               true,
	ReasonIncompletePass:     true,
	ReasonOutOfBounds:        true,
	ReasonTimeout:            true,
	ReasonInjury:             true,
	ReasonPenalty:            true,
	ReasonMeasurement:        true,
	ReasonScore:              true,
	ReasonTurnover:           true,
	ReasonTwoMinuteWarning:   true,
	ReasonEndOfQuarter:       true,
	ReasonEndOfGame:          true,
	ReasonTVTimeout:          true,
	ReasonPossessionChange:   true,
	ReasonFirstDownInsideTwo: true,
	ReasonSpike:              true,
	ReasonKneel:              true,
}

// ParseStopReason converts a wire string into a StopReason, rejecting
// anything outside the closed set.
func ParseStopReason(s string) (StopReason, error) {
	r := StopReason(s)
	if !validReasons[r] {
		return ReasonNone, fmt.Errorf("unknown stop reason %q", s)
	}
	return r, nil
}

// ParseTeam converts a wire string into a Team.
func ParseTeam(s string) (Team, error) {
	switch Team(s) {
	case Home:
		return Home, nil
	case Away:
		return Away, nil
	}
	return "", fmt.Errorf("unknown team %q", s)
}

// Stops reports whether the reason halts the clock. ReasonNone does not.
func (r StopReason) Stops() bool {
	return r != ReasonNone
}

// Administrative reports whether the stoppage is an officiating or
// broadcast pause rather than the product of the play itself. After an
// administrative stoppage the clock waits for the snap.
func (r StopReason) Administrative() bool {
	switch r {
	case ReasonTimeout, ReasonTwoMinuteWarning, ReasonInjury,
		ReasonMeasurement, ReasonTVTimeout:
		return true
	}
	return false
}

// StartsOnSnapInsideTwo reports whether the stoppage delays the restart
// until the snap when it happens inside the final two minutes of a half.
func (r StopReason) StartsOnSnapInsideTwo() bool {
	switch r {
	case ReasonOutOfBounds, ReasonIncompletePass, ReasonPossessionChange,
		ReasonFirstDownInsideTwo:
		return true
	}
	return false
}

func (r StopReason) String() string {
	if r == ReasonNone {
		return "none"
	}
	return string(r)
}
