package results

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

func TestArchive_KeyNames(t *testing.T) {
	a := NewArchive(nil, "")
	if got := a.matchKey("x"); got != "richrain:match:x" {
		t.Errorf("matchKey = %q", got)
	}
	if got := a.starsKey(); got != "richrain:leaderboard:stars" {
		t.Errorf("starsKey = %q", got)
	}
	b := NewArchive(nil, "test")
	if got := b.recentKey(); got != "test:matches" {
		t.Errorf("recentKey = %q", got)
	}
	if got := b.namesKey(); got != "test:players" {
		t.Errorf("namesKey = %q", got)
	}
}

// Runs against a real server when REDIS_ADDR is set.
func TestArchive_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	prefix := "richrain-test-" + uuid.NewString()
	a := NewArchive(rdb, prefix)
	t.Cleanup(func() {
		keys, _ := rdb.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
	})

	r := sampleResults()
	if err := a.Deliver(ctx, r); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	got, ok, err := a.Match(ctx, r.MatchID)
	if err != nil || !ok {
		t.Fatalf("Match: ok=%v err=%v", ok, err)
	}
	if len(got.Standings) != 3 || got.StarTile != 13 {
		t.Errorf("Match = %+v", got)
	}
	if _, ok, err := a.Match(ctx, "missing"); ok || err != nil {
		t.Errorf("missing match: ok=%v err=%v", ok, err)
	}
	ids, err := a.Recent(ctx, 10)
	if err != nil || len(ids) != 1 || ids[0] != r.MatchID {
		t.Errorf("Recent = %v, %v", ids, err)
	}
	top, err := a.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].PlayerID != "a" || top[0].Name != "Ava" || top[0].Stars != 2 || top[0].Wins != 1 {
		t.Errorf("Leaderboard = %+v", top)
	}

	// Same name, different player: kept apart.
	r2 := sampleResults()
	r2.MatchID = "m-2"
	r2.Standings[1].Player.Name = "Ava"
	r2.Standings[1].Player.Stars = 5
	if err := a.Deliver(ctx, r2); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	top, err = a.Leaderboard(ctx, 3)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(top) != 3 || top[0].PlayerID != "b" || top[0].Stars != 6 || top[1].PlayerID != "a" || top[1].Stars != 4 {
		t.Errorf("Leaderboard after second match = %+v", top)
	}
}
