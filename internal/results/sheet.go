// Package results turns final standings into something that outlives the
// match: a printable PDF sheet and a Redis archive.
package results

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"richrain/internal/board"
	"richrain/internal/game"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	titleSize = 20
	fontSize  = 10
	rowH      = 18.0
	tileSize  = 50.0
	tileStep  = 58.0
	tokenR    = 7.0
)

// Render returns PDF bytes for a results sheet: the standings table and the
// board with every player's final tile and the star.
func Render(r game.Results) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFillColor(10, 22, 40)
	pdf.Rect(0, 0, pageW, pageH, "F")

	pdf.SetTextColor(255, 215, 0)
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageW-2*margin, 24, "Final Results", "", 0, "C", false, 0, "")

	pdf.SetTextColor(170, 170, 170)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(margin, margin+26)
	pdf.CellFormat(pageW-2*margin, 10, fmt.Sprintf("Match %s  |  %d rounds", r.MatchID, r.Rounds), "", 0, "C", false, 0, "")

	y := drawStandings(pdf, r.Standings, margin+56)
	drawBoard(pdf, r, y+30)

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Place", 60, "C"},
	{"Player", 215, "L"},
	{"Stars", 80, "C"},
	{"Coins", 80, "C"},
	{"Tile", 80, "C"},
}

// drawStandings writes the table and returns the y just below it.
func drawStandings(pdf *gofpdf.Fpdf, standings []game.Standing, y float64) float64 {
	pdf.SetFont("Helvetica", "B", fontSize)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFillColor(45, 74, 122)
	pdf.SetXY(margin, y)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowH, c.title, "", 0, c.align, true, 0, "")
	}
	y += rowH

	pdf.SetFont("Helvetica", "", fontSize)
	for i, st := range standings {
		if i%2 == 0 {
			pdf.SetFillColor(26, 39, 68)
		} else {
			pdf.SetFillColor(20, 32, 56)
		}
		if st.Winner {
			pdf.SetTextColor(255, 215, 0)
		} else {
			pdf.SetTextColor(230, 230, 230)
		}
		cells := []string{
			placeLabel(st.Place),
			st.Player.Name,
			strconv.Itoa(st.Player.Stars),
			strconv.Itoa(st.Player.Coins),
			strconv.Itoa(st.Player.Position),
		}
		pdf.SetXY(margin, y)
		for j, c := range columns {
			pdf.CellFormat(c.width, rowH, cells[j], "", 0, c.align, true, 0, "")
		}
		sr, sg, sb := parseColor(st.Player.Color)
		pdf.SetFillColor(sr, sg, sb)
		pdf.Circle(margin+columns[0].width+columns[1].width-12, y+rowH/2, 4, "F")
		y += rowH
	}
	return y
}

func placeLabel(place int) string {
	switch place {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return strconv.Itoa(place) + "th"
	}
}

var tileColors = map[board.TileType][2][3]int{
	board.TileNormal: {{26, 39, 68}, {45, 74, 122}},
	board.TileStart:  {{26, 58, 42}, {46, 204, 113}},
	board.TileEvent:  {{58, 42, 26}, {230, 126, 34}},
	board.TileNPC:    {{42, 26, 58}, {155, 89, 182}},
}

func drawBoard(pdf *gofpdf.Fpdf, r game.Results, top float64) {
	slots := board.Positions()
	left := (pageW - (7*tileStep + tileSize)) / 2

	pdf.SetLineWidth(2)
	for i, s := range slots {
		x, y := left+float64(s.Col)*tileStep, top+float64(s.Row)*tileStep
		c := tileColors[board.Classify(i)]
		pdf.SetFillColor(c[0][0], c[0][1], c[0][2])
		pdf.SetDrawColor(c[1][0], c[1][1], c[1][2])
		pdf.Rect(x, y, tileSize, tileSize, "FD")

		pdf.SetFont("Helvetica", "", 7)
		pdf.SetTextColor(120, 120, 140)
		pdf.SetXY(x+3, y+tileSize-11)
		pdf.CellFormat(12, 8, strconv.Itoa(i), "", 0, "L", false, 0, "")

		label := ""
		switch board.Classify(i) {
		case board.TileStart:
			label = "GO"
		case board.TileEvent:
			label = "!"
		case board.TileNPC:
			label = "NPC"
		}
		if i == r.StarTile {
			label = "STAR"
			pdf.SetTextColor(255, 215, 0)
		} else {
			pdf.SetTextColor(c[1][0], c[1][1], c[1][2])
		}
		if label != "" {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetXY(x, y+5)
			pdf.CellFormat(tileSize, 10, label, "", 0, "C", false, 0, "")
		}
	}
	pdf.SetLineWidth(1)

	// tokens, side by side when sharing a tile
	onTile := map[int]int{}
	for _, st := range r.Standings {
		p := st.Player
		s := slots[board.Wrap(p.Position)]
		k := onTile[p.Position]
		onTile[p.Position]++
		x := left + float64(s.Col)*tileStep + tokenR + 3 + float64(k%3)*(2*tokenR+1)
		y := top + float64(s.Row)*tileStep + tileSize/2 + 4 + float64(k/3)*(2*tokenR-4)

		cr, cg, cb := parseColor(p.Color)
		pdf.SetFillColor(cr, cg, cb)
		pdf.SetDrawColor(255, 255, 255)
		pdf.Circle(x, y, tokenR, "FD")
		pdf.SetFont("Helvetica", "B", 7)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetXY(x-tokenR, y-4)
		pdf.CellFormat(2*tokenR, 8, initial(p.Name), "", 0, "C", false, 0, "")
	}
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		if r < 128 {
			return strings.ToUpper(string(r))
		}
		return "?"
	}
	return "?"
}

// parseColor reads "#rrggbb" or "#rgb"; anything else is grey.
func parseColor(s string) (int, int, int) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

// SheetWriter saves a results sheet per match as <Dir>/<match id>.pdf.
type SheetWriter struct {
	Dir string
}

func (w SheetWriter) Deliver(_ context.Context, r game.Results) error {
	b, err := Render(r)
	if err != nil {
		return fmt.Errorf("render results: %w", err)
	}
	if err := os.MkdirAll(w.Dir, 0o750); err != nil {
		return err
	}
	name := filepath.Base(filepath.Clean(r.MatchID))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return fmt.Errorf("invalid match id %q", r.MatchID)
	}
	return os.WriteFile(filepath.Join(w.Dir, name+".pdf"), b, 0o600)
}
