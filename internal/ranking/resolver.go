// Package ranking records the finishing order of a mini-game and pays out
// coins as each place is assigned.
package ranking

// Rewards holds the coin payout per place; places past the table pay 0.
var Rewards = []int{5, 3, 1}

// Reward returns the coins paid for rank (1-based).
func Reward(rank int) int {
	if rank < 1 || rank > len(Rewards) {
		return 0
	}
	return Rewards[rank-1]
}

// Wallet receives payouts. Credit reports false for an unknown player.
type Wallet interface {
	Credit(playerID string, coins int) bool
}

// Placement is one assigned rank.
type Placement struct {
	PlayerID string `json:"playerId"`
	Rank     int    `json:"rank"`
	Reward   int    `json:"reward"`
}

// Resolver builds a total order over a fixed set of players, one pick at a
// time. It is not safe for concurrent use.
type Resolver struct {
	eligible map[string]bool
	ranked   map[string]bool
	order    []Placement
	wallet   Wallet
}

// New returns a Resolver over playerIDs that pays into w.
func New(playerIDs []string, w Wallet) *Resolver {
	r := &Resolver{
		eligible: make(map[string]bool, len(playerIDs)),
		ranked:   make(map[string]bool, len(playerIDs)),
		order:    make([]Placement, 0, len(playerIDs)),
		wallet:   w,
	}
	for _, id := range playerIDs {
		r.eligible[id] = true
	}
	return r
}

// Pick assigns the next rank to playerID and pays its reward at once. Picks
// for unknown or already ranked players, or after completion, are ignored
// and return ok=false.
func (r *Resolver) Pick(playerID string) (Placement, bool) {
	if r.Complete() || !r.eligible[playerID] || r.ranked[playerID] {
		return Placement{}, false
	}
	rank := len(r.order) + 1
	p := Placement{PlayerID: playerID, Rank: rank, Reward: Reward(rank)}
	if p.Reward > 0 && r.wallet != nil && !r.wallet.Credit(playerID, p.Reward) {
		return Placement{}, false
	}
	r.ranked[playerID] = true
	r.order = append(r.order, p)
	return p, true
}

// Next is the rank the next pick will receive.
func (r *Resolver) Next() int {
	return len(r.order) + 1
}

// Complete reports whether every player has been ranked.
func (r *Resolver) Complete() bool {
	return len(r.order) == len(r.eligible)
}

// Placements returns the ranks assigned so far, in pick order.
func (r *Resolver) Placements() []Placement {
	out := make([]Placement, len(r.order))
	copy(out, r.order)
	return out
}
