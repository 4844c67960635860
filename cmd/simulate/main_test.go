package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"richrain/internal/catalog"
	"richrain/internal/random"
)

const testCatalog = `rounds: 3
roster:
  - {id: a, name: Ava, color: "#e74c3c"}
  - {id: b, name: Bo, color: "#3498db"}
  - {id: c, name: Cy, color: "#2ecc71"}
events:
  - {id: e1, name: Gift}
npcEvents:
  - {id: n1, name: Chat}
npcs:
  - {id: toad, name: Toad}
miniGames:
  - {id: race, name: Sack race, probability: 40, count: 2}
  - {id: quiz, name: Quiz, probability: 60, count: 1}
`

func TestSimulate_PlaysToGameOver(t *testing.T) {
	cat, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := simulate(context.Background(), cat.Setup(0), random.New(42), zap.NewNop())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if res.Rounds != 3 || len(res.Standings) != 3 {
		t.Fatalf("unexpected results: %+v", res)
	}
	if !res.Standings[0].Winner || res.Standings[0].Place != 1 {
		t.Errorf("first standing is not the winner: %+v", res.Standings[0])
	}
	coins := 0
	for _, st := range res.Standings {
		coins += st.Player.Coins + st.Player.Stars*10
	}
	// Starting coins plus 5+3+1 per round; stars are the only spend.
	if want := 3*5 + 3*9; coins != want {
		t.Errorf("coins plus star spend = %d, want %d", coins, want)
	}
}

func TestRun_WritesSheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o600); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.pdf")
	if code := run([]string{"-catalog", path, "-out", out, "-seed", "3"}); code != 0 {
		t.Fatalf("run exit code %d", code)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Errorf("sheet not written: %v", err)
	}
}

func TestRun_MissingCatalog(t *testing.T) {
	if code := run([]string{"-catalog", filepath.Join(t.TempDir(), "none.yaml")}); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}
