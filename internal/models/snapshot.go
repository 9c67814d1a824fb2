package models

import (
	"time"

	"github.com/yangxiaofu/gridiron-clock/internal/gameclock"
)

// Snapshot is the serializable form of one clock transition, stored per
// game and handed to renderers ("Q3 2:14, timeout Lions" style). It
// round-trips back to a gameclock.State without loss.
type Snapshot struct {
	GameID           string `json:"GameId"`
	Quarter          int    `json:"Quarter"`
	SecondsRemaining int    `json:"SecondsRemaining"`
	Clock            string `json:"Clock"`
	Phase            string `json:"Phase"`
	Running          bool   `json:"Running"`
	StopReason       string `json:"StopReason,omitempty"`
	HomeTimeouts     int    `json:"HomeTimeouts"`
	AwayTimeouts     int    `json:"AwayTimeouts"`
	WarningFired     bool   `json:"WarningFired"`

	QuarterEnding        bool `json:"QuarterEnding,omitempty"`
	GameEnding           bool `json:"GameEnding,omitempty"`
	ExcessTimeout        bool `json:"ExcessTimeout,omitempty"`
	ClockWillStartOnSnap bool `json:"ClockWillStartOnSnap,omitempty"`

	UpdatedUtc time.Time `json:"UpdatedUtc"`
}

// SnapshotFromState captures a bare state, outside any transition.
func SnapshotFromState(gameID string, s gameclock.State, at time.Time) Snapshot {
	return Snapshot{
		GameID:           gameID,
		Quarter:          s.Quarter,
		SecondsRemaining: s.SecondsRemaining,
		Clock:            s.Clock(),
		Phase:            string(s.Phase()),
		Running:          s.Running,
		StopReason:       string(s.StopReason),
		HomeTimeouts:     s.HomeTimeouts,
		AwayTimeouts:     s.AwayTimeouts,
		WarningFired:     s.WarningFired,
		UpdatedUtc:       at,
	}
}

// SnapshotFromResult captures a full transition including the signals
// that are not durable clock state.
func SnapshotFromResult(gameID string, res gameclock.Result, at time.Time) Snapshot {
	snap := SnapshotFromState(gameID, res.State, at)
	snap.QuarterEnding = res.QuarterEnding
	snap.GameEnding = res.GameEnding
	snap.ExcessTimeout = res.ExcessTimeout
	snap.ClockWillStartOnSnap = res.ClockWillStartOnSnap
	return snap
}

// State reconstructs the validated clock state carried by the snapshot.
func (s Snapshot) State() (gameclock.State, error) {
	reason, err := gameclock.ParseStopReason(s.StopReason)
	if err != nil {
		return gameclock.State{}, err
	}
	return gameclock.NewState(
		s.Quarter,
		s.SecondsRemaining,
		s.Running,
		reason,
		s.HomeTimeouts,
		s.AwayTimeouts,
		s.WarningFired,
	)
}
