package scoringservice

import (
	"time"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ScoreboardResult is a computed scoreboard with the identity of its game.
// ConfigErrors lists rule declarations that were skipped; the scoreboard is
// complete either way.
type ScoreboardResult struct {
	GameID       string                   `json:"gameId"`
	Name         string                   `json:"name,omitempty"`
	Fingerprint  string                   `json:"fingerprint"`
	Scoreboard   scoringdomain.Scoreboard `json:"scoreboard"`
	ConfigErrors []string                 `json:"configErrors,omitempty"`
	ComputedAt   time.Time                `json:"computedAt"`
}

// ImportRequest is a scorecard upload.
type ImportRequest struct {
	Filename string
	Data     []byte
	// GameID replaces the id found in the file, or names a scorecard that has none.
	GameID string
	Name   string
	// Options replaces the rule-set found in the file when not empty.
	Options []scoringdomain.OptionDeclaration
}

// ChartPalette holds the colors of rendered charts.
type ChartPalette struct {
	Background drawing.Color
	TextColor  drawing.Color
	GridColor  drawing.Color
}

// DefaultChartPalette is a light palette.
var DefaultChartPalette = ChartPalette{
	Background: drawing.Color{R: 255, G: 255, B: 255, A: 255},
	TextColor:  drawing.Color{R: 31, G: 41, B: 51, A: 255},
	GridColor:  drawing.Color{R: 217, G: 226, B: 236, A: 255},
}
