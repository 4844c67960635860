// Package catalog loads the match configuration: roster, card pools, NPCs,
// the mini-game catalog and presentation pacing.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"richrain/internal/game"
	"richrain/internal/minigame"
)

// DefaultRounds is used when the file does not set rounds.
const DefaultRounds = 10

type Catalog struct {
	Rounds    int         `yaml:"rounds"`
	Roster    []Character `yaml:"roster"`
	Events    []Card      `yaml:"events"`
	NPCEvents []Card      `yaml:"npcEvents"`
	NPCs      []NPC       `yaml:"npcs"`
	MiniGames []MiniGame  `yaml:"miniGames"`
	Pacing    Pacing      `yaml:"pacing"`
}

type Character struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Color  string `yaml:"color"`
	Avatar string `yaml:"avatar"`
}

type Card struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Icon        string `yaml:"icon"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"` // "reward" | "punishment"
}

type NPC struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type MiniGame struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Icon         string  `yaml:"icon"`
	WinCondition string  `yaml:"winCondition"`
	Probability  float64 `yaml:"probability"`
	Count        int     `yaml:"count"`
}

// Pacing is how long a presenter plays each step before acknowledging on
// its own, in milliseconds. Zero waits for an explicit acknowledgement.
type Pacing struct {
	TurnMs     int `yaml:"turnMs"`
	DiceMs     int `yaml:"diceMs"`
	StepMs     int `yaml:"stepMs"`
	StarMs     int `yaml:"starMs"`
	RollerMs   int `yaml:"rollerMs"`
	DetailMs   int `yaml:"detailMs"`
	MiniGameMs int `yaml:"miniGameMs"`
	RankingMs  int `yaml:"rankingMs"`
	GameOverMs int `yaml:"gameOverMs"`
}

// DefaultPacing matches the timings of the browser animations.
var DefaultPacing = Pacing{
	TurnMs:     800,
	DiceMs:     2900,
	StepMs:     350,
	StarMs:     2000,
	RollerMs:   4300,
	DetailMs:   0,
	MiniGameMs: 4600,
	RankingMs:  300,
	GameOverMs: 500,
}

// For returns the auto-acknowledge delay for an animation kind.
func (p Pacing) For(kind game.AnimationKind) time.Duration {
	ms := 0
	switch kind {
	case game.KindTurnStarted:
		ms = p.TurnMs
	case game.KindDiceRolled:
		ms = p.DiceMs
	case game.KindPositionChanged:
		ms = p.StepMs
	case game.KindStarCollected, game.KindStarMoved:
		ms = p.StarMs
	case game.KindCardDrawn:
		ms = p.RollerMs
	case game.KindCardDetail:
		ms = p.DetailMs
	case game.KindMiniGameSelected:
		ms = p.MiniGameMs
	case game.KindRankingProgress:
		ms = p.RankingMs
	case game.KindGameOver:
		ms = p.GameOverMs
	}
	return time.Duration(ms) * time.Millisecond
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path comes from the operator's flag
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", cleanPath, err)
	}
	return c, nil
}

// Parse decodes YAML. Numbers written as strings are accepted. Missing ids
// are generated, missing rounds and pacing take defaults, and the result is
// validated.
func Parse(b []byte) (*Catalog, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	c := Catalog{Pacing: DefaultPacing}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}

	c.fillDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) fillDefaults() {
	if c.Rounds == 0 {
		c.Rounds = DefaultRounds
	}
	for i := range c.Roster {
		if c.Roster[i].ID == "" {
			c.Roster[i].ID = uuid.NewString()
		}
	}
	for _, pool := range [][]Card{c.Events, c.NPCEvents} {
		for i := range pool {
			if pool[i].ID == "" {
				pool[i].ID = uuid.NewString()
			}
			if pool[i].Type == "" {
				pool[i].Type = string(game.CardReward)
			}
		}
	}
	for i := range c.NPCs {
		if c.NPCs[i].ID == "" {
			c.NPCs[i].ID = uuid.NewString()
		}
	}
	for i := range c.MiniGames {
		if c.MiniGames[i].ID == "" {
			c.MiniGames[i].ID = uuid.NewString()
		}
	}
}

// Validate reports every problem in the catalog at once.
func (c *Catalog) Validate() error {
	var err error
	if c.Rounds < 0 {
		err = multierr.Append(err, fmt.Errorf("rounds must be > 0, got %d", c.Rounds))
	}
	if len(c.Roster) == 0 {
		err = multierr.Append(err, fmt.Errorf("roster: %w", game.ErrEmptyRoster))
	}
	err = multierr.Append(err, uniqueIDs("roster", len(c.Roster), func(i int) string { return c.Roster[i].ID }))
	err = multierr.Append(err, validateCards("events", c.Events))
	err = multierr.Append(err, validateCards("npcEvents", c.NPCEvents))
	err = multierr.Append(err, uniqueIDs("miniGames", len(c.MiniGames), func(i int) string { return c.MiniGames[i].ID }))
	for _, g := range c.MiniGames {
		if g.Probability < 0 || g.Probability > minigame.Guaranteed {
			err = multierr.Append(err, fmt.Errorf("miniGames[%s]: probability %v outside 0-100", g.ID, g.Probability))
		}
		if g.Count < 0 {
			err = multierr.Append(err, fmt.Errorf("miniGames[%s]: count %d is negative", g.ID, g.Count))
		}
	}
	return err
}

func validateCards(section string, cards []Card) error {
	err := uniqueIDs(section, len(cards), func(i int) string { return cards[i].ID })
	for _, cd := range cards {
		switch game.CardKind(cd.Type) {
		case game.CardReward, game.CardPunishment:
		default:
			err = multierr.Append(err, fmt.Errorf("%s[%s]: unknown type %q", section, cd.ID, cd.Type))
		}
	}
	return err
}

func uniqueIDs(section string, n int, id func(int) string) error {
	var err error
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		v := id(i)
		if seen[v] {
			err = multierr.Append(err, fmt.Errorf("%s: duplicate id %q", section, v))
		}
		seen[v] = true
	}
	return err
}

// Setup builds a fresh match setup. rounds overrides the catalog value when
// positive. Every slice is copied, and mini-game quotas start full.
func (c *Catalog) Setup(rounds int) game.Setup {
	if rounds <= 0 {
		rounds = c.Rounds
	}
	s := game.Setup{
		Roster:      make([]game.Player, len(c.Roster)),
		Events:      toCards(c.Events),
		NPCEvents:   toCards(c.NPCEvents),
		NPCs:        make([]game.NPC, len(c.NPCs)),
		MiniGames:   make([]minigame.Game, len(c.MiniGames)),
		TotalRounds: rounds,
	}
	for i, ch := range c.Roster {
		s.Roster[i] = game.NewPlayer(ch.ID, ch.Name, ch.Color, ch.Avatar)
	}
	for i, n := range c.NPCs {
		s.NPCs[i] = game.NPC{ID: n.ID, Name: n.Name, Icon: n.Icon}
	}
	for i, g := range c.MiniGames {
		s.MiniGames[i] = minigame.Game{
			ID:             g.ID,
			Name:           g.Name,
			Icon:           g.Icon,
			WinCondition:   g.WinCondition,
			Probability:    g.Probability,
			Count:          g.Count,
			RemainingCount: g.Count,
		}
	}
	return s
}

func toCards(in []Card) []game.Card {
	out := make([]game.Card, len(in))
	for i, cd := range in {
		out[i] = game.Card{
			ID:          cd.ID,
			Name:        cd.Name,
			Icon:        cd.Icon,
			Description: cd.Description,
			Kind:        game.CardKind(cd.Type),
		}
	}
	return out
}
