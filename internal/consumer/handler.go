package consumer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yangxiaofu/gridiron-clock/internal/gameclock"
	"github.com/yangxiaofu/gridiron-clock/internal/log"
	"github.com/yangxiaofu/gridiron-clock/internal/models"
	"github.com/yangxiaofu/gridiron-clock/internal/store"
)

// chain carries one game's latest clock state between plays.
type chain struct {
	state    gameclock.State
	finished bool
}

// Handler consumes feed messages and drives a clock chain per game. It
// is the orchestrator the state machine leaves external: it resumes the
// clock at the snap, advances it per play, opens the next quarter when
// one ends, and persists every transition.
type Handler struct {
	machine *gameclock.Machine
	store   store.TransitionStore

	mu     sync.RWMutex
	chains map[string]*chain
}

func NewHandler(st store.TransitionStore, rules gameclock.Rulebook) *Handler {
	return &Handler{
		machine: gameclock.NewMachine(rules),
		store:   st,
		chains:  make(map[string]*chain),
	}
}

func (h *Handler) ProcessMessage(ctx context.Context, msg models.Message) error {
	if msg.GameSetup != nil {
		return h.processSetup(ctx, msg)
	}

	if msg.PlayResult != nil {
		return h.processPlay(ctx, msg)
	}

	log.Error("Unknown message type received",
		zap.String("message_guid", msg.Header.MessageGuid),
		zap.Bool("has_game_setup", msg.GameSetup != nil),
		zap.Bool("has_play_result", msg.PlayResult != nil),
	)
	return fmt.Errorf("unknown message type")
}

func (h *Handler) processSetup(ctx context.Context, msg models.Message) error {
	setup := *msg.GameSetup
	if setup.GameID == "" {
		return fmt.Errorf("game setup missing game id")
	}

	if err := h.store.SaveSetup(ctx, setup, msg.Header.TimeStampUtc); err != nil {
		return err
	}

	opening := gameclock.NewGame()

	h.mu.Lock()
	h.chains[setup.GameID] = &chain{state: opening}
	h.mu.Unlock()

	snap := models.SnapshotFromState(setup.GameID, opening, msg.Header.TimeStampUtc)
	if err := h.store.SaveTransition(ctx, snap); err != nil {
		return err
	}

	log.Info("Opened clock chain", zap.String("game_id", setup.GameID))
	return nil
}

func (h *Handler) processPlay(ctx context.Context, msg models.Message) error {
	play := *msg.PlayResult

	outcome, err := gameclock.ParseStopReason(play.Outcome)
	if err != nil {
		return fmt.Errorf("play for game %s: %w", play.GameID, err)
	}

	var timeoutBy *gameclock.Team
	if play.TimeoutTeam != "" {
		team, err := gameclock.ParseTeam(play.TimeoutTeam)
		if err != nil {
			return fmt.Errorf("play for game %s: %w", play.GameID, err)
		}
		timeoutBy = &team
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.chains[play.GameID]
	if !ok {
		return fmt.Errorf("no clock chain for game %s", play.GameID)
	}
	if c.finished {
		return fmt.Errorf("game %s has ended", play.GameID)
	}

	current := c.state
	// A play arriving means the snap happened; a stopped clock resumes
	// at the snap.
	if !current.Running {
		current, err = h.machine.Resume(current)
		if err != nil {
			return fmt.Errorf("resume for game %s: %w", play.GameID, err)
		}
	}

	res, err := h.machine.Advance(current, play.ElapsedSeconds, outcome, timeoutBy)
	if err != nil {
		return fmt.Errorf("advance for game %s: %w", play.GameID, err)
	}

	snap := models.SnapshotFromResult(play.GameID, res, msg.Header.TimeStampUtc)
	if err := h.store.SaveTransition(ctx, snap); err != nil {
		return err
	}

	switch {
	case res.GameEnding:
		c.state = res.State
		c.finished = true
		log.Info("Game ended",
			zap.String("game_id", play.GameID),
			zap.Int("quarter", res.State.Quarter),
		)
	case res.QuarterEnding:
		next, err := h.machine.StartNextQuarter(res.State)
		if err != nil {
			return fmt.Errorf("next quarter for game %s: %w", play.GameID, err)
		}
		c.state = next
		opening := models.SnapshotFromState(play.GameID, next, msg.Header.TimeStampUtc)
		if err := h.store.SaveTransition(ctx, opening); err != nil {
			return err
		}
		log.Info("Quarter started",
			zap.String("game_id", play.GameID),
			zap.Int("quarter", next.Quarter),
		)
	default:
		c.state = res.State
	}

	if res.ExcessTimeout {
		log.Warn("Excess timeout requested",
			zap.String("game_id", play.GameID),
			zap.String("team", play.TimeoutTeam),
		)
	}
	return nil
}

// Latest returns the current clock state for a game.
func (h *Handler) Latest(gameID string) (gameclock.State, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.chains[gameID]
	if !ok {
		return gameclock.State{}, false
	}
	return c.state, true
}

func (h *Handler) Close() error {
	return h.store.Close()
}
