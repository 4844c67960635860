package minigame

import "richrain/internal/random"

const (
	// MaxRollerItems caps the reel length.
	MaxRollerItems = 8
	// maxExhausted is how many quota-spent games are mixed into the reel.
	maxExhausted = 2
	// ReelRepeats is how many times a presenter repeats the reel; the
	// target sits in the third-from-last repetition.
	ReelRepeats = 5
)

// Roller is the reel shown while the selection is revealed. The outcome is
// already decided; Items only drives the animation.
type Roller struct {
	Items []Game `json:"items"`
	// Target is the index of the selected game in Items.
	Target int `json:"target"`
	// ReelTarget is Target's index once Items is repeated ReelRepeats times.
	ReelTarget int `json:"reelTarget"`
}

// ReelTarget returns the stop index for a reel of n items repeated
// ReelRepeats times with the winner at index target.
func ReelTarget(n, target int) int {
	return (ReelRepeats-2)*n + target
}

// Roller composes the reel for selected: the winner, up to two other games
// whose quota is spent, then other games in random order up to
// MaxRollerItems, all shuffled.
func (s *Selector) Roller(selected Game) Roller {
	items := []Game{selected}
	used := map[string]bool{selected.ID: true}

	for _, g := range s.games {
		if len(items) > maxExhausted {
			break
		}
		if !used[g.ID] && g.RemainingCount <= 0 {
			items = append(items, g)
			used[g.ID] = true
		}
	}

	var others []Game
	for _, g := range s.games {
		if !used[g.ID] {
			others = append(others, g)
		}
	}
	random.Shuffle(s.rng, others)
	for _, g := range others {
		if len(items) >= MaxRollerItems {
			break
		}
		items = append(items, g)
	}

	random.Shuffle(s.rng, items)
	target := 0
	for i, g := range items {
		if g.ID == selected.ID {
			target = i
			break
		}
	}
	return Roller{Items: items, Target: target, ReelTarget: ReelTarget(len(items), target)}
}
