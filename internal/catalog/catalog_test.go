package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"richrain/internal/game"
)

const sampleYAML = `rounds: 4
roster:
  - id: "mario"
    name: "Mario"
    color: "#e74c3c"
    avatar: "img/mario.png"
  - name: "Luigi"
    color: "#2ecc71"
events:
  - id: "gift"
    name: "Gift box"
    description: "Something nice"
    type: "reward"
  - id: "trap"
    name: "Trap"
    type: "punishment"
npcEvents:
  - id: "chat"
    name: "Small talk"
npcs:
  - id: "toad"
    name: "Toad"
miniGames:
  - id: "race"
    name: "Sack race"
    winCondition: "First across the line"
    probability: "100"
    count: "1"
  - id: "quiz"
    name: "Quiz"
    probability: 35.5
    count: 3
pacing:
  stepMs: 10
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil { //nolint:gosec // test file permissions are acceptable
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	c, err := Load(writeCatalog(t, sampleYAML))
	if err != nil {
		t.Fatalf("Unexpected error loading catalog: %v", err)
	}

	if c.Rounds != 4 {
		t.Errorf("Expected 4 rounds, got %d", c.Rounds)
	}
	if len(c.Roster) != 2 {
		t.Fatalf("Expected 2 characters, got %d", len(c.Roster))
	}
	if c.Roster[1].ID == "" {
		t.Error("Expected a generated id for Luigi")
	}
	if c.NPCEvents[0].Type != "reward" {
		t.Errorf("Expected default card type reward, got %q", c.NPCEvents[0].Type)
	}

	race := c.MiniGames[0]
	if race.Probability != 100 || race.Count != 1 {
		t.Errorf("Expected string numbers decoded, got %+v", race)
	}
	if c.MiniGames[1].Probability != 35.5 {
		t.Errorf("Expected probability 35.5, got %v", c.MiniGames[1].Probability)
	}

	if c.Pacing.StepMs != 10 {
		t.Errorf("Expected stepMs 10, got %d", c.Pacing.StepMs)
	}
	if c.Pacing.StarMs != DefaultPacing.StarMs {
		t.Errorf("Expected default starMs %d kept, got %d", DefaultPacing.StarMs, c.Pacing.StarMs)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("roster: [unclosed")); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestParse_DefaultRounds(t *testing.T) {
	c, err := Parse([]byte("roster:\n  - name: Solo\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c.Rounds != DefaultRounds {
		t.Errorf("Expected default rounds %d, got %d", DefaultRounds, c.Rounds)
	}
}

func TestParse_ReportsEveryProblem(t *testing.T) {
	body := `rounds: -1
events:
  - id: a
    type: bonus
  - id: a
miniGames:
  - id: m
    probability: 140
    count: -2
`
	_, err := Parse([]byte(body))
	if err == nil {
		t.Fatal("Expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"rounds", "roster", "duplicate id \"a\"", "unknown type \"bonus\"", "probability 140", "count -2"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected error to mention %q, got: %s", want, msg)
		}
	}
}

func TestSetup(t *testing.T) {
	c, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	s := c.Setup(0)
	if s.TotalRounds != 4 {
		t.Errorf("Expected catalog rounds, got %d", s.TotalRounds)
	}
	if s2 := c.Setup(7); s2.TotalRounds != 7 {
		t.Errorf("Expected rounds override 7, got %d", s2.TotalRounds)
	}

	if len(s.Roster) != 2 || s.Roster[0].Coins != game.StartCoins {
		t.Errorf("Unexpected roster %+v", s.Roster)
	}
	if s.Events[1].Kind != game.CardPunishment {
		t.Errorf("Expected punishment card, got %q", s.Events[1].Kind)
	}
	if s.MiniGames[1].RemainingCount != 3 {
		t.Errorf("Expected quota to start full, got %d", s.MiniGames[1].RemainingCount)
	}

	s.Events[0].Name = "changed"
	if c.Events[0].Name == "changed" {
		t.Error("Setup must copy card pools")
	}
}

func TestPacing_For(t *testing.T) {
	p := DefaultPacing
	if got := p.For(game.KindPositionChanged); got != 350*time.Millisecond {
		t.Errorf("Expected 350ms per step, got %v", got)
	}
	if got := p.For(game.KindCardDetail); got != 0 {
		t.Errorf("Expected card detail to wait for an ack, got %v", got)
	}
}

func TestStore(t *testing.T) {
	a, _ := Parse([]byte(sampleYAML))
	b, _ := Parse([]byte("rounds: 2\nroster:\n  - name: Solo\n"))
	s := NewStore(a)
	if s.Setup(0).TotalRounds != 4 {
		t.Error("Expected first catalog")
	}
	s.Replace(b)
	if got := s.Setup(0); got.TotalRounds != 2 || len(got.Roster) != 1 {
		t.Errorf("Expected replaced catalog, got %+v", got)
	}
	if s.Pacing() != DefaultPacing {
		t.Errorf("Expected default pacing, got %+v", s.Pacing())
	}
}
