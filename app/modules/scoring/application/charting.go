package scoringservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
	"github.com/wcharczuk/go-chart/v2"
)

// RenderRunningTotals scores a stored game and charts its running totals.
func (s *ScoringService) RenderRunningTotals(ctx context.Context, gameID string) ([]byte, error) {
	return unwrap(withTelemetry(s, ctx, "RenderRunningTotals", gameID, func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		snap, err := s.repo.GetSnapshot(ctx, nil, gameID)
		if err != nil {
			if errors.Is(err, scoringdb.ErrNotFound) {
				return results.FailureResult[[]byte, error](fmt.Errorf("%w: %s", ErrGameNotFound, gameID)), nil
			}
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to load game: %w", err)
		}

		res := s.score(ctx, snap)
		png, err := GenerateRunningTotalsChart(snap, res.Scoreboard, s.palette)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to render chart: %w", err)
		}
		return results.SuccessResult[[]byte, error](png), nil
	}))
}

// RunningTotals returns each player's points after every hole in playing
// order. Holes missing from the scoreboard carry the previous total.
func RunningTotals(snap *scoringdomain.GameSnapshot, sb scoringdomain.Scoreboard) map[string][]int {
	out := make(map[string][]int, len(snap.Players))
	for _, p := range snap.Players {
		cum, ok := sb.Cumulative.Players[p.ID]
		totals := make([]int, len(snap.Holes))
		last := 0
		for i, h := range snap.Holes {
			if ok {
				if v, played := cum.RunningTotal[h.Hole]; played {
					last = v
				}
			}
			totals[i] = last
		}
		out[p.ID] = totals
	}
	return out
}

// GenerateRunningTotalsChart produces a PNG line chart with one series per player.
func GenerateRunningTotalsChart(snap *scoringdomain.GameSnapshot, sb scoringdomain.Scoreboard, palette ChartPalette) ([]byte, error) {
	if snap == nil || len(snap.Holes) == 0 || len(snap.Players) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	totals := RunningTotals(snap, sb)

	xValues := make([]float64, len(snap.Holes))
	ticks := make([]chart.Tick, len(snap.Holes))
	for i, h := range snap.Holes {
		xValues[i] = float64(i + 1)
		ticks[i] = chart.Tick{Value: float64(i + 1), Label: h.Hole}
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	names := make(map[string]string, len(snap.Players))
	for _, p := range snap.Players {
		names[p.ID] = p.Name
		if p.Name == "" {
			names[p.ID] = p.ID
		}
	}

	minY, maxY := 0.0, 0.0
	series := make([]chart.Series, 0, len(ids))
	for i, id := range ids {
		yValues := make([]float64, len(totals[id]))
		for j, v := range totals[id] {
			yValues[j] = float64(v)
			minY = min(minY, yValues[j])
			maxY = max(maxY, yValues[j])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    names[id],
			XValues: xValues,
			YValues: yValues,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
				DotWidth:    3,
				DotColor:    chart.GetDefaultColor(i),
			},
		})
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:  "Hole",
			Ticks: ticks,
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
			Range: &chart.ContinuousRange{Min: 1, Max: max(float64(len(snap.Holes)), 2)},
		},
		YAxis: chart.YAxis{
			Name: "Points",
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: palette.GridColor,
				StrokeWidth: 1,
			},
			Range: &chart.ContinuousRange{Min: minY - 1, Max: maxY + 1},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws a centered message on a blank canvas. It
// uses the renderer directly since a chart needs at least one series.
func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No scores entered yet"
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	r.SetDPI(chart.DefaultDPI)
	r.SetFillColor(palette.Background)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(palette.TextColor)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
