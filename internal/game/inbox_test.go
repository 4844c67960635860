package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"richrain/internal/minigame"
	"richrain/internal/random"
	"richrain/internal/random/randomtest"
)

// gate holds the presenter on one animation kind until released.
type gate struct {
	kind    AnimationKind
	reached chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate(kind AnimationKind) *gate {
	return &gate{kind: kind, reached: make(chan struct{}, 16), release: make(chan struct{})}
}

func (g *gate) Animate(_ context.Context, a Animation) error {
	if a.Kind == g.kind {
		select {
		case g.reached <- struct{}{}:
		default:
		}
		<-g.release
	}
	return nil
}

func (g *gate) open() { g.once.Do(func() { close(g.release) }) }

func (g *gate) wait(t *testing.T) {
	t.Helper()
	select {
	case <-g.reached:
	case <-time.After(5 * time.Second):
		t.Fatalf("presenter never reached %s", g.kind)
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("%s: not reached", what)
}

func newInboxMatch(t *testing.T, p Presenter) (*Controller, *Inbox) {
	t.Helper()
	c, err := NewController(Setup{
		Roster:      roster("a", "b"),
		MiniGames:   []minigame.Game{{ID: "g", Name: "g", Probability: 100, Count: 1}},
		TotalRounds: 1,
	}, Options{
		MatchID:   "inbox",
		Random:    random.NewWithSource(&randomtest.Fixed{Ints: []int{0}}),
		Presenter: p,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	b := NewInbox(c)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)
	return c, b
}

func TestInbox_RollQueuedWhileTurnAnnounced(t *testing.T) {
	g := newGate(KindTurnStarted)
	defer g.open()
	c, b := newInboxMatch(t, g)

	if !b.Roll() {
		t.Fatal("Expected the first roll to be accepted")
	}
	g.wait(t) // announcing b's turn

	if ph := c.Phase(); ph != PhaseWaitingForRoll {
		t.Fatalf("Expected waiting_for_roll during the announcement, got %s", ph)
	}
	if !b.Roll() {
		t.Fatal("Expected a roll during the announcement to be accepted")
	}
	if b.Roll() {
		t.Error("Expected a second queued roll to be refused")
	}
	g.open()

	eventually(t, "mini-game", func() bool {
		s := c.Snapshot()
		return s.Phase == PhaseMiniGame && s.NextRank == 1
	})
	if pos := c.Snapshot().Players[1].Position; pos != 1 {
		t.Errorf("Expected b on tile 1, got %d", pos)
	}
}

func TestInbox_RanksAppliedInArrivalOrder(t *testing.T) {
	g := newGate(KindRankingProgress)
	defer g.open()
	c, b := newInboxMatch(t, g)

	c.Roll(context.Background())
	c.Roll(context.Background())
	if c.Phase() != PhaseMiniGame {
		t.Fatalf("Expected mini_game, got %s", c.Phase())
	}

	if !b.SelectRank("b") {
		t.Fatal("Expected pick for b to be accepted")
	}
	g.wait(t) // b's placement still playing
	if !b.SelectRank("a") {
		t.Fatal("Expected pick for a to be accepted while b's placement plays")
	}
	g.open()

	var res Results
	eventually(t, "game over", func() bool {
		var ok bool
		res, ok = c.Results()
		return ok
	})
	coins := map[string]int{}
	for _, st := range res.Standings {
		coins[st.Player.ID] = st.Player.Coins
	}
	if coins["b"] != StartCoins+5 || coins["a"] != StartCoins+3 {
		t.Errorf("Expected b=%d a=%d, got %v", StartCoins+5, StartCoins+3, coins)
	}
}

func TestInbox_RejectsWrongPhase(t *testing.T) {
	c, b := newInboxMatch(t, nil)

	if b.SelectRank("a") {
		t.Error("Expected a pick before the mini-game to be refused")
	}
	c.Roll(context.Background())
	c.Roll(context.Background())

	if b.Roll() {
		t.Error("Expected a roll during the mini-game to be refused")
	}
	if b.SelectRank("zed") {
		t.Error("Expected a pick for an unknown player to be refused")
	}
}

func TestInbox_CloseStopsRun(t *testing.T) {
	c, err := NewController(Setup{Roster: roster("a"), TotalRounds: 1}, Options{})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	b := NewInbox(c)
	done := make(chan struct{})
	go func() {
		b.Run(context.Background())
		close(done)
	}()
	b.Close()
	b.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}
