package results

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"richrain/internal/game"
)

func sampleResults() game.Results {
	a := game.NewPlayer("a", "Ava", "#e74c3c", "")
	a.Stars, a.Coins, a.Position = 2, 7, 6
	b := game.NewPlayer("b", "Bo", "#3498db", "")
	b.Stars, b.Coins, b.Position = 1, 12, 6
	c := game.NewPlayer("c", "Cy", "bad", "")
	c.Position = 23
	return game.Results{
		MatchID:  "m-1",
		Rounds:   10,
		StarTile: 13,
		Standings: []game.Standing{
			{Player: a, Place: 1, Winner: true},
			{Player: b, Place: 2},
			{Player: c, Place: 3},
		},
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	b, err := Render(sampleResults())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Error("output is not a PDF (missing %PDF header)")
	}
	if len(b) < 500 {
		t.Errorf("PDF too short: %d bytes", len(b))
	}
}

func TestRender_NoStandings(t *testing.T) {
	b, err := Render(game.Results{MatchID: "empty"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Error("missing %PDF header")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
	}{
		{"#ff8000", 255, 128, 0},
		{"00ff00", 0, 255, 0},
		{"#fff", 255, 255, 255},
		{"", 128, 128, 128},
		{"#zzzzzz", 128, 128, 128},
	}
	for _, tt := range tests {
		r, g, b := parseColor(tt.in)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("parseColor(%q) = %d,%d,%d want %d,%d,%d", tt.in, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestPlaceLabel(t *testing.T) {
	for place, want := range map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th"} {
		if got := placeLabel(place); got != want {
			t.Errorf("placeLabel(%d) = %q want %q", place, got, want)
		}
	}
}

func TestSheetWriter_WritesFile(t *testing.T) {
	dir := t.TempDir()
	w := SheetWriter{Dir: filepath.Join(dir, "sheets")}
	if err := w.Deliver(context.Background(), sampleResults()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "sheets", "m-1.pdf"))
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Error("sheet is not a PDF")
	}
}

func TestSheetWriter_PathEscape(t *testing.T) {
	dir := t.TempDir()
	r := sampleResults()
	r.MatchID = "../../escape"
	if err := (SheetWriter{Dir: dir}).Deliver(context.Background(), r); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.pdf")); err != nil {
		t.Errorf("expected sheet inside dir: %v", err)
	}
}

type failing struct{ err error }

func (f failing) Deliver(context.Context, game.Results) error { return f.err }

type counting struct{ n *int }

func (c counting) Deliver(context.Context, game.Results) error { *c.n++; return nil }

func TestFanout_DeliversToAllAndJoinsErrors(t *testing.T) {
	var n int
	e1, e2 := errors.New("one"), errors.New("two")
	f := Fanout{failing{e1}, counting{&n}, failing{e2}, counting{&n}}
	err := f.Deliver(context.Background(), sampleResults())
	if n != 2 {
		t.Errorf("delivered to %d sinks, want 2", n)
	}
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Errorf("err = %v, want both failures", err)
	}
	if err := (Fanout{counting{&n}}).Deliver(context.Background(), sampleResults()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
