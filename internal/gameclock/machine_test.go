package gameclock

import (
	"errors"
	"testing"
)

func TestNewGame(t *testing.T) {
	s := NewGame()

	if s.Quarter != 1 {
		t.Errorf("Quarter = %d, want 1", s.Quarter)
	}
	if s.SecondsRemaining != QuarterSeconds {
		t.Errorf("SecondsRemaining = %d, want %d", s.SecondsRemaining, QuarterSeconds)
	}
	if !s.Running {
		t.Error("expected clock running")
	}
	if s.StopReason != ReasonNone {
		t.Errorf("StopReason = %q, want none", s.StopReason)
	}
	if s.HomeTimeouts != TimeoutsPerHalf || s.AwayTimeouts != TimeoutsPerHalf {
		t.Errorf("timeouts = %d/%d, want %d each", s.HomeTimeouts, s.AwayTimeouts, TimeoutsPerHalf)
	}
	if s.WarningFired {
		t.Error("warning latch should start clear")
	}
	if s.Phase() != FirstHalf {
		t.Errorf("Phase = %q, want first half", s.Phase())
	}
}

func TestAdvanceDecrementsClock(t *testing.T) {
	m := NewMachine(nil)

	tests := []struct {
		name     string
		start    int
		elapsed  int
		wantLeft int
	}{
		{"normal play", 600, 32, 568},
		{"quick spike", 600, 2, 598},
		{"kneel", 500, 40, 460},
		{"floors at zero", 10, 25, 0},
		{"exact zero", 40, 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewGame()
			s.SecondsRemaining = tt.start

			res, err := m.Advance(s, tt.elapsed, ReasonNone, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.State.SecondsRemaining != tt.wantLeft {
				t.Errorf("SecondsRemaining = %d, want %d", res.State.SecondsRemaining, tt.wantLeft)
			}
		})
	}
}

func TestAdvanceStopsOnOutcome(t *testing.T) {
	m := NewMachine(nil)
	s := NewGame()

	res, err := m.Advance(s, 7, ReasonIncompletePass, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State.Running {
		t.Error("expected clock stopped after incomplete pass")
	}
	if res.State.StopReason != ReasonIncompletePass {
		t.Errorf("StopReason = %q, want incomplete_pass", res.State.StopReason)
	}
}

func TestTwoMinuteWarning(t *testing.T) {
	m := NewMachine(nil)

	t.Run("fires on the crossing", func(t *testing.T) {
		s := NewGame()
		s.Quarter = 2
		s.SecondsRemaining = 130

		res, err := m.Advance(s, 15, ReasonNone, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.State.SecondsRemaining != 115 {
			t.Errorf("SecondsRemaining = %d, want 115 (deducted once)", res.State.SecondsRemaining)
		}
		if !res.State.WarningFired {
			t.Error("expected warning latch set")
		}
		if res.State.StopReason != ReasonTwoMinuteWarning {
			t.Errorf("StopReason = %q, want two_minute_warning", res.State.StopReason)
		}
		if res.State.Running {
			t.Error("expected clock stopped")
		}
	})

	t.Run("fires at exactly 120", func(t *testing.T) {
		s := NewGame()
		s.Quarter = 4
		s.SecondsRemaining = 121

		res, err := m.Advance(s, 1, ReasonNone, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.State.WarningFired || res.State.StopReason != ReasonTwoMinuteWarning {
			t.Errorf("warning did not fire at 120: %+v", res.State)
		}
	})

	t.Run("at most once per half", func(t *testing.T) {
		s := NewGame()
		s.Quarter = 2
		s.SecondsRemaining = 125

		fired := 0
		for i := 0; i < 20 && s.SecondsRemaining > 0; i++ {
			if !s.Running {
				var err error
				s, err = m.Resume(s)
				if err != nil {
					t.Fatalf("resume: %v", err)
				}
			}
			res, err := m.Advance(s, 10, ReasonNone, nil)
			if err != nil {
				t.Fatalf("advance: %v", err)
			}
			if res.State.StopReason == ReasonTwoMinuteWarning {
				fired++
			}
			s = res.State
		}
		if fired != 1 {
			t.Errorf("warning fired %d times, want exactly 1", fired)
		}
	})

	t.Run("not in first or third quarter", func(t *testing.T) {
		for _, q := range []int{1, 3} {
			s := NewGame()
			s.Quarter = q
			s.SecondsRemaining = 125

			res, err := m.Advance(s, 10, ReasonNone, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.State.WarningFired || !res.State.Running {
				t.Errorf("Q%d: warning should not fire, got %+v", q, res.State)
			}
		}
	})

	t.Run("swallowed by quarter end", func(t *testing.T) {
		s := NewGame()
		s.Quarter = 2
		s.SecondsRemaining = 125

		res, err := m.Advance(s, 125, ReasonNone, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.QuarterEnding {
			t.Error("expected quarter ending")
		}
		if res.State.StopReason == ReasonTwoMinuteWarning {
			t.Error("expiring quarter should swallow the warning")
		}
	})

	t.Run("needs running clock", func(t *testing.T) {
		s := NewGame()
		s.Quarter = 2
		s.SecondsRemaining = 125
		s.Running = false
		s.StopReason = ReasonIncompletePass

		res, err := m.Advance(s, 10, ReasonNone, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.State.WarningFired {
			t.Error("warning should not fire off a stopped clock")
		}
	})
}

func TestTimeoutAccounting(t *testing.T) {
	m := NewMachine(nil)

	t.Run("granted timeout decrements", func(t *testing.T) {
		s := NewGame()
		team := Home

		res, err := m.Advance(s, 5, ReasonNone, &team)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.State.HomeTimeouts != 2 {
			t.Errorf("HomeTimeouts = %d, want 2", res.State.HomeTimeouts)
		}
		if res.State.AwayTimeouts != 3 {
			t.Errorf("AwayTimeouts = %d, want 3", res.State.AwayTimeouts)
		}
		if res.State.Running {
			t.Error("expected clock stopped")
		}
		if res.State.StopReason != ReasonTimeout {
			t.Errorf("StopReason = %q, want timeout", res.State.StopReason)
		}
		if res.ExcessTimeout {
			t.Error("granted timeout should not flag excess")
		}
		if !res.ClockWillStartOnSnap {
			t.Error("timeout holds the clock until the snap")
		}
	})

	t.Run("excess timeout flagged, never negative", func(t *testing.T) {
		s := NewGame()
		s.AwayTimeouts = 0
		team := Away

		res, err := m.Advance(s, 0, ReasonNone, &team)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.ExcessTimeout {
			t.Error("expected excess timeout flag")
		}
		if res.State.AwayTimeouts != 0 {
			t.Errorf("AwayTimeouts = %d, want 0", res.State.AwayTimeouts)
		}
		if res.State.Running {
			t.Error("the clock still stops on an excess request")
		}
	})

	t.Run("outcome reason wins over timeout", func(t *testing.T) {
		s := NewGame()
		team := Home

		res, err := m.Advance(s, 8, ReasonOutOfBounds, &team)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.State.StopReason != ReasonOutOfBounds {
			t.Errorf("StopReason = %q, want out_of_bounds", res.State.StopReason)
		}
		if res.State.HomeTimeouts != 2 {
			t.Errorf("HomeTimeouts = %d, want 2 (still charged)", res.State.HomeTimeouts)
		}
	})
}

func TestQuarterEnd(t *testing.T) {
	m := NewMachine(nil)

	t.Run("regulation game ends after the fourth", func(t *testing.T) {
		s := NewGame()
		s.Quarter = 4
		s.SecondsRemaining = 3

		res, err := m.Advance(s, 5, ReasonNone, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.State.SecondsRemaining != 0 {
			t.Errorf("SecondsRemaining = %d, want 0", res.State.SecondsRemaining)
		}
		if !res.QuarterEnding {
			t.Error("expected QuarterEnding")
		}
		if !res.GameEnding {
			t.Error("expected GameEnding")
		}
		if res.State.StopReason != ReasonEndOfGame {
			t.Errorf("StopReason = %q, want end_of_game", res.State.StopReason)
		}
	})

	t.Run("mid-game quarter just rolls", func(t *testing.T) {
		s := NewGame()
		s.SecondsRemaining = 2

		res, err := m.Advance(s, 10, ReasonNone, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.QuarterEnding || res.GameEnding {
			t.Errorf("QuarterEnding=%v GameEnding=%v, want true/false", res.QuarterEnding, res.GameEnding)
		}
		if res.State.StopReason != ReasonEndOfQuarter {
			t.Errorf("StopReason = %q, want end_of_quarter", res.State.StopReason)
		}
	})

	t.Run("outcome reason survives the expiry", func(t *testing.T) {
		s := NewGame()
		s.SecondsRemaining = 4

		res, err := m.Advance(s, 6, ReasonScore, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.State.StopReason != ReasonScore {
			t.Errorf("StopReason = %q, want score", res.State.StopReason)
		}
		if !res.QuarterEnding {
			t.Error("expected QuarterEnding")
		}
	})
}

func TestZeroElapsedIdempotent(t *testing.T) {
	m := NewMachine(nil)

	s := NewGame()
	s.Quarter = 3
	s.SecondsRemaining = 431
	s.HomeTimeouts = 1

	res, err := m.Advance(s, 0, ReasonNone, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != s {
		t.Errorf("zero-elapsed advance changed state: %+v -> %+v", s, res.State)
	}

	stopped := s
	stopped.Running = false
	stopped.StopReason = ReasonOutOfBounds

	res, err = m.Advance(stopped, 0, ReasonNone, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := stopped
	want.StopReason = ReasonNone
	if res.State != want {
		t.Errorf("zero-elapsed advance should only clear the reason, got %+v", res.State)
	}
}

func TestQuarterMonotonic(t *testing.T) {
	m := NewMachine(nil)

	s := NewGame()
	prev := s.Quarter
	for i := 0; i < 50; i++ {
		if !s.Running {
			var err error
			s, err = m.Resume(s)
			if err != nil {
				t.Fatalf("resume: %v", err)
			}
		}
		res, err := m.Advance(s, 13, ReasonNone, nil)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if res.State.Quarter < prev {
			t.Fatalf("quarter decreased: %d -> %d", prev, res.State.Quarter)
		}
		if res.QuarterEnding {
			break
		}
		prev = res.State.Quarter
		s = res.State
	}
}

func TestAdvanceRejectsBadInput(t *testing.T) {
	m := NewMachine(nil)

	t.Run("corrupt state", func(t *testing.T) {
		s := NewGame()
		s.HomeTimeouts = -1

		_, err := m.Advance(s, 5, ReasonNone, nil)
		var invalid *InvalidStateError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
		if invalid.Field != "home_timeouts" {
			t.Errorf("Field = %q, want home_timeouts", invalid.Field)
		}
	})

	t.Run("negative elapsed", func(t *testing.T) {
		_, err := m.Advance(NewGame(), -1, ReasonNone, nil)
		var invalid *InvalidStateError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})

	t.Run("unknown outcome", func(t *testing.T) {
		_, err := m.Advance(NewGame(), 5, StopReason("fumblerooski"), nil)
		if err == nil {
			t.Fatal("expected error for unknown outcome")
		}
	})
}

func TestStartNextQuarter(t *testing.T) {
	m := NewMachine(nil)

	t.Run("plain rollover", func(t *testing.T) {
		s := NewGame()
		s.SecondsRemaining = 0
		s.Running = false
		s.StopReason = ReasonEndOfQuarter
		s.HomeTimeouts = 1

		next, err := m.StartNextQuarter(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next.Quarter != 2 {
			t.Errorf("Quarter = %d, want 2", next.Quarter)
		}
		if next.SecondsRemaining != QuarterSeconds {
			t.Errorf("SecondsRemaining = %d, want %d", next.SecondsRemaining, QuarterSeconds)
		}
		if next.Running {
			t.Error("clock holds until the opening snap")
		}
		if next.HomeTimeouts != 1 {
			t.Errorf("HomeTimeouts = %d, want 1 (no reset mid-half)", next.HomeTimeouts)
		}
	})

	t.Run("halftime restores timeouts and warning", func(t *testing.T) {
		s := NewGame()
		s.Quarter = 2
		s.SecondsRemaining = 0
		s.Running = false
		s.HomeTimeouts = 0
		s.AwayTimeouts = 1
		s.WarningFired = true

		next, err := m.StartNextQuarter(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next.Quarter != 3 {
			t.Errorf("Quarter = %d, want 3", next.Quarter)
		}
		if next.HomeTimeouts != TimeoutsPerHalf || next.AwayTimeouts != TimeoutsPerHalf {
			t.Errorf("timeouts = %d/%d, want full allotment", next.HomeTimeouts, next.AwayTimeouts)
		}
		if next.WarningFired {
			t.Error("warning latch should clear at halftime")
		}
		if next.Phase() != SecondHalf {
			t.Errorf("Phase = %q, want second half", next.Phase())
		}
	})

	t.Run("overtime opens a fresh half", func(t *testing.T) {
		s := NewGame()
		s.Quarter = 4
		s.SecondsRemaining = 0
		s.Running = false
		s.HomeTimeouts = 0
		s.WarningFired = true

		next, err := m.StartNextQuarter(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next.Quarter != 5 {
			t.Errorf("Quarter = %d, want 5", next.Quarter)
		}
		if next.Phase() != Overtime {
			t.Errorf("Phase = %q, want overtime", next.Phase())
		}
		if next.HomeTimeouts != TimeoutsPerHalf || next.WarningFired {
			t.Errorf("overtime should restore allotments: %+v", next)
		}
	})

	t.Run("rejected while time remains", func(t *testing.T) {
		s := NewGame()
		_, err := m.StartNextQuarter(s)
		var invalid *InvalidStateError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})
}

func TestResume(t *testing.T) {
	m := NewMachine(nil)

	s := NewGame()
	s.Running = false
	s.StopReason = ReasonTimeout

	next, err := m.Resume(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Running {
		t.Error("expected clock running after snap")
	}
	if next.StopReason != ReasonNone {
		t.Errorf("StopReason = %q, want none", next.StopReason)
	}
}

func TestClockWillStartOnSnap(t *testing.T) {
	m := NewMachine(nil)

	tests := []struct {
		name    string
		quarter int
		left    int
		outcome StopReason
		want    bool
	}{
		{"out of bounds early", 1, 700, ReasonOutOfBounds, false},
		{"out of bounds inside two", 4, 110, ReasonOutOfBounds, true},
		{"incomplete inside two", 2, 90, ReasonIncompletePass, true},
		{"possession change inside two", 4, 60, ReasonPossessionChange, true},
		{"injury anywhere", 3, 500, ReasonInjury, true},
		{"measurement anywhere", 1, 400, ReasonMeasurement, true},
		{"score early", 1, 700, ReasonScore, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewGame()
			s.Quarter = tt.quarter
			s.SecondsRemaining = tt.left
			s.WarningFired = tt.quarter == 2 || tt.quarter == 4

			res, err := m.Advance(s, 5, tt.outcome, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.ClockWillStartOnSnap != tt.want {
				t.Errorf("ClockWillStartOnSnap = %v, want %v", res.ClockWillStartOnSnap, tt.want)
			}
		})
	}
}

func TestOvertimePolicy(t *testing.T) {
	t.Run("tie forces overtime", func(t *testing.T) {
		tied := true
		m := NewMachine(RulebookFunc(func(s State) bool {
			return !tied
		}))

		s := NewGame()
		s.Quarter = 4
		s.SecondsRemaining = 10

		res, err := m.Advance(s, 15, ReasonNone, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.GameEnding {
			t.Fatal("tied game must not end after the fourth")
		}

		ot, err := m.StartNextQuarter(res.State)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ot.Quarter != 5 || ot.Phase() != Overtime {
			t.Fatalf("expected overtime period, got %+v", ot)
		}

		// A score breaks the tie; the expiring overtime period now ends
		// the game.
		tied = false
		ot.SecondsRemaining = 8
		ot, err = m.Resume(ot)
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		res, err = m.Advance(ot, 12, ReasonNone, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.GameEnding {
			t.Error("expected GameEnding once the tie is broken")
		}
	})

	t.Run("nil rulebook means regulation only", func(t *testing.T) {
		m := NewMachine(nil)

		s := NewGame()
		s.Quarter = 4
		s.SecondsRemaining = 1

		res, err := m.Advance(s, 1, ReasonNone, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.GameEnding {
			t.Error("default rulebook ends the game after the fourth")
		}
	})
}
