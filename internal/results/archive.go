package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/multierr"

	"richrain/internal/game"
)

const recentLimit = 100

// Archive keeps finished matches and an all-time leaderboard in Redis.
//
//	<prefix>:match:<id>        JSON results
//	<prefix>:matches           most recent match ids, newest first
//	<prefix>:leaderboard:stars stars won per player id
//	<prefix>:leaderboard:wins  matches won per player id
//	<prefix>:players           player id to latest display name
type Archive struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewArchive(rdb redis.UniversalClient, prefix string) *Archive {
	if prefix == "" {
		prefix = "richrain"
	}
	return &Archive{rdb: rdb, prefix: prefix}
}

func (a *Archive) matchKey(id string) string { return fmt.Sprintf("%s:match:%s", a.prefix, id) }
func (a *Archive) recentKey() string         { return a.prefix + ":matches" }
func (a *Archive) starsKey() string          { return a.prefix + ":leaderboard:stars" }
func (a *Archive) winsKey() string           { return a.prefix + ":leaderboard:wins" }
func (a *Archive) namesKey() string          { return a.prefix + ":players" }

// Deliver stores r and updates the leaderboards in one transaction.
func (a *Archive) Deliver(ctx context.Context, r game.Results) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	pipe := a.rdb.TxPipeline()
	pipe.Set(ctx, a.matchKey(r.MatchID), data, 0)
	pipe.LPush(ctx, a.recentKey(), r.MatchID)
	pipe.LTrim(ctx, a.recentKey(), 0, recentLimit-1)
	for _, st := range r.Standings {
		id := st.Player.ID
		pipe.HSet(ctx, a.namesKey(), id, st.Player.Name)
		pipe.ZIncrBy(ctx, a.starsKey(), float64(st.Player.Stars), id)
		if st.Winner {
			pipe.ZIncrBy(ctx, a.winsKey(), 1, id)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("archive match %s: %w", r.MatchID, err)
	}
	return nil
}

// Match loads archived results.
func (a *Archive) Match(ctx context.Context, id string) (game.Results, bool, error) {
	var r game.Results
	b, err := a.rdb.Get(ctx, a.matchKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, false, err
	}
	return r, true, nil
}

// Recent lists up to n archived match ids, newest first.
func (a *Archive) Recent(ctx context.Context, n int) ([]string, error) {
	return a.rdb.LRange(ctx, a.recentKey(), 0, int64(n)-1).Result()
}

// Leader is one leaderboard line.
type Leader struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Stars    int    `json:"stars"`
	Wins     int    `json:"wins"`
}

// Leaderboard returns the top n players by stars collected.
func (a *Archive) Leaderboard(ctx context.Context, n int) ([]Leader, error) {
	zs, err := a.rdb.ZRevRangeWithScores(ctx, a.starsKey(), 0, int64(n)-1).Result()
	if err != nil {
		return nil, err
	}
	if len(zs) == 0 {
		return []Leader{}, nil
	}
	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i], _ = z.Member.(string)
	}
	names, err := a.rdb.HMGet(ctx, a.namesKey(), ids...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Leader, len(zs))
	for i, z := range zs {
		l := Leader{PlayerID: ids[i], Name: ids[i], Stars: int(z.Score)}
		if name, ok := names[i].(string); ok && name != "" {
			l.Name = name
		}
		wins, err := a.rdb.ZScore(ctx, a.winsKey(), ids[i]).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		l.Wins = int(wins)
		out[i] = l
	}
	return out, nil
}

// Fanout delivers to every sink and reports all failures together.
type Fanout []game.ResultsSink

func (f Fanout) Deliver(ctx context.Context, r game.Results) error {
	var err error
	for _, s := range f {
		err = multierr.Append(err, s.Deliver(ctx, r))
	}
	return err
}
