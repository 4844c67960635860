package game

import (
	"context"
	"sync"
)

const inboxSize = 32

type input struct {
	rank     bool
	playerID string
}

// Inbox is the single entry point for inputs from concurrent clients. Each
// input is checked against the phase when it arrives, then applied in
// arrival order by the goroutine running Run. An input accepted while a
// presentation step is still playing waits for it instead of being lost.
type Inbox struct {
	c    *Controller
	ch   chan input
	stop chan struct{}
	once sync.Once
}

func NewInbox(c *Controller) *Inbox {
	return &Inbox{
		c:    c,
		ch:   make(chan input, inboxSize),
		stop: make(chan struct{}),
	}
}

// Run applies queued inputs until ctx is done or Close is called.
func (b *Inbox) Run(ctx context.Context) {
	for {
		select {
		case in := <-b.ch:
			if in.rank {
				b.c.SelectRank(ctx, in.playerID)
			} else {
				b.c.Roll(ctx)
			}
		case <-b.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Close stops Run. Inputs still queued are discarded.
func (b *Inbox) Close() {
	b.once.Do(func() { close(b.stop) })
}

// Roll queues a roll. It reports false when the match is not waiting for a
// roll or one is already queued.
func (b *Inbox) Roll() bool {
	c := b.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseWaitingForRoll || c.rollQueued {
		return false
	}
	if !b.offer(input{}) {
		return false
	}
	c.rollQueued = true
	return true
}

// SelectRank queues a ranking pick. It reports false outside the mini-game
// or for a player not in the match. Repeated picks are left to the
// resolver, which ignores them.
func (b *Inbox) SelectRank(playerID string) bool {
	c := b.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseMiniGame {
		return false
	}
	if _, ok := c.byID[playerID]; !ok {
		return false
	}
	return b.offer(input{rank: true, playerID: playerID})
}

func (b *Inbox) offer(in input) bool {
	select {
	case b.ch <- in:
		return true
	default:
		return false
	}
}
