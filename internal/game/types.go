package game

import (
	"richrain/internal/minigame"
)

// Opening balance and the price of a star.
const (
	StartCoins = 5
	StarCost   = 10
)

const (
	// DefaultStarTile is where the star sits when a match begins.
	DefaultStarTile = 6
	// ShortlistSize is how many cards a tile draw puts on the reel.
	ShortlistSize = 6
)

// Phase is the state of the turn machine.
type Phase string

const (
	PhaseWaitingForRoll Phase = "waiting_for_roll"
	PhaseRolling        Phase = "rolling"
	PhaseMoving         Phase = "moving"
	PhaseResolvingTile  Phase = "resolving_tile"
	PhaseMiniGame       Phase = "mini_game"
	PhaseRoundAdvance   Phase = "round_advance"
	PhaseGameOver       Phase = "game_over"
)

// Player is a participant and their balances.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Avatar   string `json:"avatar"`
	Coins    int    `json:"coins"`
	Stars    int    `json:"stars"`
	Position int    `json:"position"`
}

// CardKind is flavour text only; a card never changes balances.
type CardKind string

const (
	CardReward     CardKind = "reward"
	CardPunishment CardKind = "punishment"
)

// Card is an event or NPC event drawn on a special tile.
type Card struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Kind        CardKind `json:"kind"`
}

// NPC is a decorative identity shown while an NPC card is drawn.
type NPC struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Setup is everything a match reads from configuration at start.
type Setup struct {
	Roster      []Player
	Events      []Card
	NPCEvents   []Card
	NPCs        []NPC
	MiniGames   []minigame.Game
	TotalRounds int
	// StarTile overrides the opening star tile. It is re-drawn if it is
	// not a normal tile.
	StarTile *int
}

// NewPlayer returns a roster entry with opening balances on the start tile.
func NewPlayer(id, name, color, avatar string) Player {
	return Player{
		ID:     id,
		Name:   name,
		Color:  color,
		Avatar: avatar,
		Coins:  StartCoins,
	}
}

// Snapshot is a read-only copy of the match for UI panels.
type Snapshot struct {
	Players       []Player       `json:"players"`
	Round         int            `json:"round"`
	TotalRounds   int            `json:"totalRounds"`
	CurrentPlayer int            `json:"currentPlayer"`
	Phase         Phase          `json:"phase"`
	StarTile      int            `json:"starTile"`
	MiniGame      *minigame.Game `json:"miniGame,omitempty"`
	NextRank      int            `json:"nextRank,omitempty"`
	Ranked        map[string]int `json:"ranked,omitempty"`
}

// Standing is one line of the final results.
type Standing struct {
	Player Player `json:"player"`
	Place  int    `json:"place"`
	Winner bool   `json:"winner"`
}

// Results is handed to the results collaborator when the match ends.
type Results struct {
	MatchID   string     `json:"matchId"`
	Rounds    int        `json:"rounds"`
	StarTile  int        `json:"starTile"`
	Standings []Standing `json:"standings"`
}
