package models

import "time"

// Message is the envelope for one feed line. Exactly one payload field
// is set per message.
type Message struct {
	Header     Header      `json:"Header"`
	GameSetup  *GameSetup  `json:"GameSetup,omitempty"`
	PlayResult *PlayResult `json:"PlayResult,omitempty"`
}

type Header struct {
	Retry        int       `json:"Retry"`
	MessageGuid  string    `json:"MessageGuid"`
	TimeStampUtc time.Time `json:"TimeStampUtc"`
}

// GameSetup opens a clock chain for a game and names its competitors.
type GameSetup struct {
	GameID       string       `json:"GameId"`
	Competitors  []Competitor `json:"Competitors"`
	StartTimeUtc time.Time    `json:"StartTimeUtc"`
}

type Competitor struct {
	Name     string `json:"Name"`
	HomeAway string `json:"HomeAway"`
}

// PlayResult reports one resolved play: the game time it consumed, how
// it classified for clock purposes, and any timeout called during the
// ensuing dead ball.
type PlayResult struct {
	GameID         string `json:"GameId"`
	ElapsedSeconds int    `json:"ElapsedSeconds"`
	// Outcome is a stop-reason string, or empty when the clock keeps
	// running.
	Outcome string `json:"Outcome,omitempty"`
	// TimeoutTeam is "Home" or "Away" when a timeout was requested.
	TimeoutTeam string `json:"TimeoutTeam,omitempty"`
}
