// Package minigame picks the end-of-round mini-game and lays out the reel
// the presenter spins to reveal it.
package minigame

import (
	"richrain/internal/random"
)

// Guaranteed is the probability at which a game with quota left preempts
// weighted selection.
const Guaranteed = 100

// Game is one entry of the mini-game catalog.
type Game struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Icon         string  `json:"icon"`
	WinCondition string  `json:"winCondition"`
	Probability  float64 `json:"probability"` // weight, 0-100
	// Count is the configured quota a match starts with.
	Count int `json:"count"`
	// RemainingCount is decremented on every quota-governed selection.
	RemainingCount int `json:"remainingCount"`
}

// Selection reports which game was drawn and through which branch.
type Selection struct {
	Game       Game
	Guaranteed bool // drawn from the probability-100 subset
	Fallback   bool // every quota was exhausted; no decrement applied
}

// Selector owns a per-match copy of the catalog. Quotas live here, so the
// configuration store is never written.
type Selector struct {
	games []Game
	rng   *random.Selector
}

// NewSelector copies games and keeps their RemainingCount as given.
func NewSelector(games []Game, rng *random.Selector) *Selector {
	cp := make([]Game, len(games))
	copy(cp, games)
	return &Selector{games: cp, rng: rng}
}

// Reset restores every quota to its configured Count.
func (s *Selector) Reset() {
	for i := range s.games {
		s.games[i].RemainingCount = max(0, s.games[i].Count)
	}
}

// Games returns a copy of the catalog with current quotas.
func (s *Selector) Games() []Game {
	out := make([]Game, len(s.games))
	copy(out, s.games)
	return out
}

// Select draws the round's mini-game:
//  1. uniform among games with probability 100 and quota left;
//  2. otherwise, if no game has quota left, uniform among all games
//     without touching any quota;
//  3. otherwise weighted by probability among games with quota left.
//
// Branches 1 and 3 decrement the chosen game's quota, floored at 0.
// ok is false only for an empty catalog.
func (s *Selector) Select() (Selection, bool) {
	if len(s.games) == 0 {
		return Selection{}, false
	}

	var guaranteed, available []int
	for i, g := range s.games {
		if g.RemainingCount <= 0 {
			continue
		}
		available = append(available, i)
		if g.Probability == Guaranteed {
			guaranteed = append(guaranteed, i)
		}
	}

	var idx int
	sel := Selection{}
	switch {
	case len(guaranteed) > 0:
		idx, _ = random.Pick(s.rng, guaranteed)
		sel.Guaranteed = true
	case len(available) == 0:
		sel.Game = s.games[s.rng.Intn(len(s.games))]
		sel.Fallback = true
		return sel, true
	default:
		idx, _ = random.PickWeighted(s.rng, available, func(i int) float64 {
			return s.games[i].Probability
		})
	}

	s.games[idx].RemainingCount = max(0, s.games[idx].RemainingCount-1)
	sel.Game = s.games[idx]
	return sel, true
}
