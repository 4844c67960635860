package game

import (
	"context"

	"richrain/internal/minigame"
	"richrain/internal/ranking"
)

// AnimationKind names a presentation step.
type AnimationKind string

const (
	KindTurnStarted      AnimationKind = "turn-started"
	KindDiceRolled       AnimationKind = "dice-rolled"
	KindPositionChanged  AnimationKind = "position-changed"
	KindStarCollected    AnimationKind = "star-collected"
	KindStarMoved        AnimationKind = "star-moved"
	KindCardDrawn        AnimationKind = "card-drawn"
	KindCardDetail       AnimationKind = "card-detail"
	KindMiniGameSelected AnimationKind = "mini-game-selected"
	KindRankingProgress  AnimationKind = "ranking-progress"
	KindGameOver         AnimationKind = "game-over"
)

// Animation is one step handed to the presenter. Payload is one of the
// *Payload types below, matching Kind.
type Animation struct {
	Kind    AnimationKind `json:"kind"`
	Payload any           `json:"payload"`
}

// Presenter plays an animation and returns once it has finished. The
// controller never starts a step before the previous Animate returns.
type Presenter interface {
	Animate(ctx context.Context, a Animation) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, a Animation) error

func (f PresenterFunc) Animate(ctx context.Context, a Animation) error { return f(ctx, a) }

// ResultsSink receives the final standings once the match is over.
type ResultsSink interface {
	Deliver(ctx context.Context, r Results) error
}

type TurnStartedPayload struct {
	PlayerID string `json:"playerId"`
	Round    int    `json:"round"`
}

type DiceRolledPayload struct {
	PlayerID string `json:"playerId"`
	Value    int    `json:"value"`
}

type PositionChangedPayload struct {
	PlayerID  string `json:"playerId"`
	Position  int    `json:"position"`
	StepsLeft int    `json:"stepsLeft"`
}

type StarCollectedPayload struct {
	PlayerID string `json:"playerId"`
	Tile     int    `json:"tile"`
	Coins    int    `json:"coins"`
	Stars    int    `json:"stars"`
}

type StarMovedPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// CardDrawnPayload drives the card reel. Deck is "event" or "npc".
type CardDrawnPayload struct {
	PlayerID   string `json:"playerId"`
	Deck       string `json:"deck"`
	Title      string `json:"title"`
	Shortlist  []Card `json:"shortlist"`
	Final      int    `json:"final"`
	ReelTarget int    `json:"reelTarget"`
	NPC        *NPC   `json:"npc,omitempty"`
}

type CardDetailPayload struct {
	PlayerID string `json:"playerId"`
	Card     Card   `json:"card"`
}

type MiniGameSelectedPayload struct {
	Game       minigame.Game   `json:"game"`
	Roller     minigame.Roller `json:"roller"`
	Guaranteed bool            `json:"guaranteed"`
	Fallback   bool            `json:"fallback"`
}

type RankingProgressPayload struct {
	Placement ranking.Placement `json:"placement"`
	Coins     int               `json:"coins"`
	Complete  bool              `json:"complete"`
}

type GameOverPayload struct {
	Results Results `json:"results"`
}
