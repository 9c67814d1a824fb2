package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/yangxiaofu/gridiron-clock/internal/log"
	"github.com/yangxiaofu/gridiron-clock/internal/models"
)

const (
	Home = "Home"
	Away = "Away"
)

// RedisStore keeps the latest clock snapshot per game in a hash for
// quick reads and appends every transition to a per-game stream for
// consumers that need the full chronology.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Successfully connected to Redis", zap.String("address", addr))
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) SaveSetup(ctx context.Context, setup models.GameSetup, at time.Time) error {
	homeTeam := ""
	awayTeam := ""
	for _, comp := range setup.Competitors {
		if comp.HomeAway == Home {
			homeTeam = comp.Name
		} else if comp.HomeAway == Away {
			awayTeam = comp.Name
		}
	}
	if homeTeam == "" || awayTeam == "" {
		return fmt.Errorf("game %s missing home or away team", setup.GameID)
	}

	key := fmt.Sprintf("game:%s", setup.GameID)
	setupData := map[string]interface{}{
		"home_team":  homeTeam,
		"away_team":  awayTeam,
		"start_time": setup.StartTimeUtc.Format(time.RFC3339),
		"timestamp":  at.Format(time.RFC3339),
	}

	if err := s.client.HSet(ctx, key, setupData).Err(); err != nil {
		return fmt.Errorf("failed to store game setup: %w", err)
	}

	log.Info("Stored game setup", zap.Any("setup", setupData))
	return nil
}

func (s *RedisStore) SaveTransition(ctx context.Context, snap models.Snapshot) error {
	key := fmt.Sprintf("game:%s", snap.GameID)
	clockData := map[string]interface{}{
		"quarter":        snap.Quarter,
		"clock":          snap.Clock,
		"phase":          snap.Phase,
		"is_running":     snap.Running,
		"stop_reason":    snap.StopReason,
		"home_timeouts":  snap.HomeTimeouts,
		"away_timeouts":  snap.AwayTimeouts,
		"excess_timeout": snap.ExcessTimeout,
		"game_ending":    snap.GameEnding,
		"timestamp":      snap.UpdatedUtc.Format(time.RFC3339),
	}

	if err := s.client.HSet(ctx, key, clockData).Err(); err != nil {
		return fmt.Errorf("failed to store latest clock state: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal transition: %w", err)
	}
	streamKey := fmt.Sprintf("clock.transitions.%s", snap.GameID)
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]interface{}{
			"data":    string(data),
			"quarter": snap.Quarter,
			"clock":   snap.Clock,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append transition to stream: %w", err)
	}

	log.Debug("Stored clock transition",
		zap.String("game_id", snap.GameID),
		zap.Int("quarter", snap.Quarter),
		zap.String("clock", snap.Clock),
	)
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
