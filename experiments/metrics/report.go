package metrics

import (
	"emcts/utils"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

// series collects one value per move for each variant, keeping the variants' first-seen order.
type series struct {
	moves    []string
	variants []string
	values   map[string][]float64
}

func collect(records []MoveRecord, value func(MoveRecord) float64, keep func(MoveRecord) bool) series {
	s := series{values: make(map[string][]float64)}
	index := make(map[string]int)
	for _, r := range records {
		label := fmt.Sprintf("g%d/m%d", r.Game, r.Turn)
		if _, ok := index[label]; !ok {
			index[label] = len(s.moves)
			s.moves = append(s.moves, label)
		}
		if !keep(r) {
			continue
		}
		if _, ok := s.values[r.Variant]; !ok {
			s.variants = append(s.variants, r.Variant)
		}
		values := s.values[r.Variant]
		for len(values) <= index[label] {
			values = append(values, 0)
		}
		values[index[label]] = value(r)
		s.values[r.Variant] = values
	}
	return s
}

func lineChart(title, subtitle string, s series, suffix string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)
	line.SetXAxis(s.moves)
	addSeries(line, s, suffix)
	return line
}

func addSeries(line *charts.Line, s series, suffix string) {
	for _, variant := range s.variants {
		items := make([]opts.LineData, 0, len(s.values[variant]))
		for _, v := range s.values[variant] {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(variant+suffix, items)
	}
}

func all(MoveRecord) bool { return true }

func grouped(r MoveRecord) bool { return r.Strategy != "" && r.Strategy != "none" }

// Report renders node counts, next-player choices, ground against abstract nodes, compression
// and mean tree size per variant as one HTML page.
func Report(w io.Writer, records []MoveRecord, alphaAbs int) error {
	nodes := lineChart("Nodes per move", "root children plus grandchildren", collect(records, func(r MoveRecord) float64 {
		return float64(r.Nodes)
	}, all), "")

	choices := lineChart("Choices for the next player", "", collect(records, func(r MoveRecord) float64 {
		return float64(r.Choices)
	}, all), "")

	abstraction := lineChart("Ground and abstract nodes", "", collect(records, func(r MoveRecord) float64 {
		return float64(r.Ground)
	}, grouped), " ground")
	addSeries(abstraction, collect(records, func(r MoveRecord) float64 {
		return float64(r.Abstract)
	}, grouped), " abstract")

	compression := lineChart("Compression rate", fmt.Sprintf("ground / abstract, alpha_abs = %d", alphaAbs), collect(records, func(r MoveRecord) float64 {
		return r.Compression()
	}, grouped), "")

	page := components.NewPage()
	page.AddCharts(nodes, choices, abstraction, compression, efficiency(records))
	return errors.Wrap(page.Render(w), "failed to render report")
}

func efficiency(records []MoveRecord) *charts.Bar {
	var variants []string
	nodes := make(map[string][]int)
	for _, r := range records {
		if _, ok := nodes[r.Variant]; !ok {
			variants = append(variants, r.Variant)
		}
		nodes[r.Variant] = append(nodes[r.Variant], r.Nodes)
	}

	items := make([]opts.BarData, 0, len(variants))
	for _, v := range variants {
		items = append(items, opts.BarData{Value: utils.Mean(nodes[v])})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Mean nodes per decision",
		}),
	)
	bar.SetXAxis(variants).AddSeries("nodes", items)
	return bar
}
