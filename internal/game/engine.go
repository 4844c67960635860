// Package game runs a match: the turn state machine that moves players
// around the board, resolves tiles, holds the end-of-round mini-game and
// hands the final standings to the results collaborator.
package game

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"richrain/internal/board"
	"richrain/internal/minigame"
	"richrain/internal/random"
	"richrain/internal/ranking"
)

// Options carries the collaborators of a Controller. Every field is
// optional.
type Options struct {
	MatchID   string
	Logger    *zap.Logger
	Random    *random.Selector
	Presenter Presenter
	Results   ResultsSink
}

// Controller is the only writer of match state. Inputs arrive through Roll
// and SelectRank; each runs its presentation steps to completion before
// returning, and inputs that arrive while a step is in flight or in the
// wrong phase are dropped. Hosts with concurrent clients go through an
// Inbox instead of calling them directly.
type Controller struct {
	id      string
	log     *zap.Logger
	rng     *random.Selector
	present Presenter
	results ResultsSink

	// busy is held for the whole of an input's handling.
	busy sync.Mutex
	// mu guards the fields below for Snapshot readers.
	mu sync.Mutex

	players     []*Player
	byID        map[string]*Player
	events      []Card
	npcEvents   []Card
	npcs        []NPC
	games       *minigame.Selector
	round       int
	totalRounds int
	current     int
	phase       Phase
	starTile    int
	miniGame    *minigame.Game
	ranks       *ranking.Resolver
	final       *Results
	// rollQueued is set by an Inbox that has accepted a roll the
	// controller has not picked up yet.
	rollQueued bool
}

// NewController validates setup and creates the match state. An empty
// roster or a non-positive round count aborts before any state exists.
func NewController(setup Setup, opts Options) (*Controller, error) {
	if len(setup.Roster) == 0 {
		return nil, ErrEmptyRoster
	}
	if setup.TotalRounds <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRounds, setup.TotalRounds)
	}

	c := &Controller{
		id:          opts.MatchID,
		log:         opts.Logger,
		rng:         opts.Random,
		present:     opts.Presenter,
		results:     opts.Results,
		byID:        make(map[string]*Player, len(setup.Roster)),
		events:      append([]Card(nil), setup.Events...),
		npcEvents:   append([]Card(nil), setup.NPCEvents...),
		npcs:        append([]NPC(nil), setup.NPCs...),
		round:       1,
		totalRounds: setup.TotalRounds,
		phase:       PhaseWaitingForRoll,
	}
	if c.id == "" {
		c.id = uuid.New().String()
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.rng == nil {
		c.rng = random.New(0)
	}
	if c.present == nil {
		c.present = PresenterFunc(func(context.Context, Animation) error { return nil })
	}
	c.log = c.log.With(zap.String("match_id", c.id))

	for _, r := range setup.Roster {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, r.ID)
		}
		p := NewPlayer(r.ID, r.Name, r.Color, r.Avatar)
		c.players = append(c.players, &p)
		c.byID[p.ID] = &p
	}

	c.games = minigame.NewSelector(setup.MiniGames, c.rng)
	c.games.Reset()

	c.starTile = DefaultStarTile
	if setup.StarTile != nil {
		c.starTile = board.Wrap(*setup.StarTile)
	}
	for board.Classify(c.starTile) != board.TileNormal {
		c.starTile = c.rng.Intn(board.Size)
	}

	c.log.Info("match created",
		zap.Int("players", len(c.players)),
		zap.Int("rounds", c.totalRounds),
		zap.Int("star_tile", c.starTile),
	)
	return c, nil
}

// ID returns the match id.
func (c *Controller) ID() string { return c.id }

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Snapshot copies the match state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Players:       make([]Player, len(c.players)),
		Round:         c.round,
		TotalRounds:   c.totalRounds,
		CurrentPlayer: c.current,
		Phase:         c.phase,
		StarTile:      c.starTile,
	}
	for i, p := range c.players {
		s.Players[i] = *p
	}
	if c.miniGame != nil {
		g := *c.miniGame
		s.MiniGame = &g
	}
	if c.ranks != nil {
		s.NextRank = c.ranks.Next()
		s.Ranked = make(map[string]int)
		for _, pl := range c.ranks.Placements() {
			s.Ranked[pl.PlayerID] = pl.Rank
		}
	}
	return s
}

// Results returns the final standings once the match is over.
func (c *Controller) Results() (Results, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.final == nil {
		return Results{}, false
	}
	return *c.final, true
}

// Announce tells the presenter whose turn it is. Hosts call it once a
// presenter is attached; it does not change state.
func (c *Controller) Announce(ctx context.Context) {
	if !c.busy.TryLock() {
		return
	}
	defer c.busy.Unlock()

	c.mu.Lock()
	if c.phase != PhaseWaitingForRoll {
		c.mu.Unlock()
		return
	}
	payload := TurnStartedPayload{PlayerID: c.players[c.current].ID, Round: c.round}
	c.mu.Unlock()
	c.animate(ctx, KindTurnStarted, payload)
}

// Roll is the roll input. It is honoured only in PhaseWaitingForRoll and
// plays the current player's whole turn: dice, movement, tile resolution
// and, after the last player of a round, the mini-game reel.
func (c *Controller) Roll(ctx context.Context) {
	if !c.busy.TryLock() {
		c.log.Debug("roll dropped: step in flight")
		return
	}
	defer c.busy.Unlock()

	c.mu.Lock()
	c.rollQueued = false
	if c.phase != PhaseWaitingForRoll {
		c.log.Debug("roll dropped", zap.String("phase", string(c.phase)))
		c.mu.Unlock()
		return
	}
	c.phase = PhaseRolling
	p := c.players[c.current]
	dice := c.rng.Dice()
	c.mu.Unlock()

	c.log.Debug("dice rolled", zap.String("player_id", p.ID), zap.Int("value", dice))
	c.animate(ctx, KindDiceRolled, DiceRolledPayload{PlayerID: p.ID, Value: dice})

	c.setPhase(PhaseMoving)
	c.move(ctx, p, dice)

	c.setPhase(PhaseResolvingTile)
	c.resolveTile(ctx, p)

	c.endTurn(ctx)
}

// SelectRank is the ranking input: it gives playerID the next place in the
// current mini-game and pays the reward. It is honoured only while the
// mini-game is waiting for ranks; repeated or unknown players are ignored.
func (c *Controller) SelectRank(ctx context.Context, playerID string) {
	if !c.busy.TryLock() {
		c.log.Debug("rank dropped: step in flight", zap.String("player_id", playerID))
		return
	}
	defer c.busy.Unlock()

	c.mu.Lock()
	if c.phase != PhaseMiniGame || c.ranks == nil {
		c.log.Debug("rank dropped", zap.String("phase", string(c.phase)))
		c.mu.Unlock()
		return
	}
	pl, ok := c.ranks.Pick(playerID)
	if !ok {
		c.log.Debug("rank ignored", zap.String("player_id", playerID))
		c.mu.Unlock()
		return
	}
	done := c.ranks.Complete()
	coins := c.byID[playerID].Coins
	if done {
		c.ranks = nil
		c.miniGame = nil
		c.phase = PhaseRoundAdvance
	}
	c.mu.Unlock()

	c.animate(ctx, KindRankingProgress, RankingProgressPayload{Placement: pl, Coins: coins, Complete: done})
	if done {
		c.advanceRound(ctx)
	}
}

// credit pays coins to a player on behalf of the ranking resolver. Only
// called with mu held.
func (c *Controller) credit(playerID string, coins int) bool {
	p, ok := c.byID[playerID]
	if !ok {
		return false
	}
	p.Coins += coins
	return true
}

type wallet struct{ c *Controller }

func (w wallet) Credit(playerID string, coins int) bool { return w.c.credit(playerID, coins) }

func (c *Controller) move(ctx context.Context, p *Player, steps int) {
	for left := steps - 1; left >= 0; left-- {
		c.mu.Lock()
		p.Position = board.Advance(p.Position)
		pos := p.Position
		c.mu.Unlock()

		c.animate(ctx, KindPositionChanged, PositionChangedPayload{PlayerID: p.ID, Position: pos, StepsLeft: left})
		c.checkStar(ctx, p)
	}
}

func (c *Controller) checkStar(ctx context.Context, p *Player) {
	c.mu.Lock()
	if p.Position != c.starTile || p.Coins < StarCost {
		c.mu.Unlock()
		return
	}
	p.Coins -= StarCost
	p.Stars++
	collected := StarCollectedPayload{PlayerID: p.ID, Tile: c.starTile, Coins: p.Coins, Stars: p.Stars}
	c.mu.Unlock()

	c.log.Info("star collected", zap.String("player_id", p.ID), zap.Int("tile", collected.Tile), zap.Int("stars", collected.Stars))
	c.animate(ctx, KindStarCollected, collected)

	to, ok := random.Pick(c.rng, board.NormalTiles(collected.Tile))
	if !ok {
		return
	}
	c.mu.Lock()
	c.starTile = to
	c.mu.Unlock()
	c.animate(ctx, KindStarMoved, StarMovedPayload{From: collected.Tile, To: to})
}

func (c *Controller) resolveTile(ctx context.Context, p *Player) {
	switch board.Classify(p.Position) {
	case board.TileEvent:
		if len(c.events) > 0 {
			c.drawCard(ctx, p, "event", "Random event", c.events, nil)
		}
	case board.TileNPC:
		if len(c.npcEvents) > 0 {
			title := "NPC event"
			var who *NPC
			if n, ok := random.Pick(c.rng, c.npcs); ok {
				who = &n
				title = "Interacting with " + n.Name
			}
			c.drawCard(ctx, p, "npc", title, c.npcEvents, who)
		}
	}
}

func (c *Controller) drawCard(ctx context.Context, p *Player, deck, title string, pool []Card, who *NPC) {
	shortlist := random.Sample(c.rng, pool, ShortlistSize)
	final := c.rng.Intn(len(shortlist))
	c.log.Debug("card drawn",
		zap.String("player_id", p.ID),
		zap.String("deck", deck),
		zap.String("card_id", shortlist[final].ID),
	)
	c.animate(ctx, KindCardDrawn, CardDrawnPayload{
		PlayerID:   p.ID,
		Deck:       deck,
		Title:      title,
		Shortlist:  shortlist,
		Final:      final,
		ReelTarget: minigame.ReelTarget(len(shortlist), final),
		NPC:        who,
	})
	c.animate(ctx, KindCardDetail, CardDetailPayload{PlayerID: p.ID, Card: shortlist[final]})
}

func (c *Controller) endTurn(ctx context.Context) {
	c.mu.Lock()
	c.current++
	if c.current < len(c.players) {
		c.phase = PhaseWaitingForRoll
		next := TurnStartedPayload{PlayerID: c.players[c.current].ID, Round: c.round}
		c.mu.Unlock()
		c.animate(ctx, KindTurnStarted, next)
		return
	}
	c.current = 0
	c.phase = PhaseMiniGame
	c.mu.Unlock()

	c.startMiniGame(ctx)
}

func (c *Controller) startMiniGame(ctx context.Context) {
	sel, ok := c.games.Select()
	if !ok {
		c.log.Warn("mini-game catalog is empty; skipping ranking")
		c.setPhase(PhaseRoundAdvance)
		c.advanceRound(ctx)
		return
	}
	c.log.Info("mini-game selected",
		zap.String("game_id", sel.Game.ID),
		zap.Bool("guaranteed", sel.Guaranteed),
		zap.Bool("fallback", sel.Fallback),
		zap.Int("remaining", sel.Game.RemainingCount),
	)
	roller := c.games.Roller(sel.Game)
	c.animate(ctx, KindMiniGameSelected, MiniGameSelectedPayload{
		Game:       sel.Game,
		Roller:     roller,
		Guaranteed: sel.Guaranteed,
		Fallback:   sel.Fallback,
	})

	c.mu.Lock()
	ids := make([]string, len(c.players))
	for i, p := range c.players {
		ids[i] = p.ID
	}
	g := sel.Game
	c.miniGame = &g
	c.ranks = ranking.New(ids, wallet{c})
	c.mu.Unlock()
}

func (c *Controller) advanceRound(ctx context.Context) {
	c.mu.Lock()
	c.round++
	if c.round <= c.totalRounds {
		c.phase = PhaseWaitingForRoll
		next := TurnStartedPayload{PlayerID: c.players[c.current].ID, Round: c.round}
		c.mu.Unlock()
		c.log.Debug("round started", zap.Int("round", next.Round))
		c.animate(ctx, KindTurnStarted, next)
		return
	}
	c.phase = PhaseGameOver
	res := c.standingsLocked()
	c.final = &res
	c.mu.Unlock()

	c.log.Info("game over", zap.String("winner", res.Standings[0].Player.ID))
	c.animate(ctx, KindGameOver, GameOverPayload{Results: res})
	if c.results != nil {
		if err := c.results.Deliver(ctx, res); err != nil {
			c.log.Warn("results delivery failed", zap.Error(err))
		}
	}
}

// standingsLocked orders players by stars, then coins, then roster order.
// Players level on both share a place.
func (c *Controller) standingsLocked() Results {
	order := make([]int, len(c.players))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := c.players[order[a]], c.players[order[b]]
		if pa.Stars != pb.Stars {
			return pa.Stars > pb.Stars
		}
		return pa.Coins > pb.Coins
	})

	res := Results{MatchID: c.id, Rounds: c.totalRounds, StarTile: c.starTile, Standings: make([]Standing, len(order))}
	for i, idx := range order {
		p := *c.players[idx]
		place := i + 1
		if i > 0 {
			prev := res.Standings[i-1]
			if prev.Player.Stars == p.Stars && prev.Player.Coins == p.Coins {
				place = prev.Place
			}
		}
		res.Standings[i] = Standing{Player: p, Place: place, Winner: place == 1}
	}
	return res
}

func (c *Controller) setPhase(ph Phase) {
	c.mu.Lock()
	c.phase = ph
	c.mu.Unlock()
	c.log.Debug("phase", zap.String("phase", string(ph)))
}

// animate suspends until the presenter acknowledges. A failed
// acknowledgement counts as done so the turn still completes exactly once.
func (c *Controller) animate(ctx context.Context, kind AnimationKind, payload any) {
	if err := c.present.Animate(ctx, Animation{Kind: kind, Payload: payload}); err != nil {
		c.log.Warn("presentation step failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}
