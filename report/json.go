package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/davidvella/traffic"
	"github.com/davidvella/traffic/analyzer"
	"github.com/davidvella/traffic/monitoring"
)

type jsonBucket struct {
	Datetime string `json:"datetime"`
	Count    int64  `json:"count"`
}

type jsonWindow struct {
	DatetimeRange []string `json:"datetime_range"`
	TotalCars     int64    `json:"total_cars"`
}

type jsonGap struct {
	After   string `json:"after"`
	Before  string `json:"before"`
	Missing int    `json:"missing"`
}

type jsonSummary struct {
	Paths        []string             `json:"paths"`
	TotalCars    int64                `json:"total_cars"`
	PerDay       []analyzer.DayTotal  `json:"per_day"`
	TopHalfHours []jsonBucket         `json:"top_half_hours"`
	LeastWindow  jsonWindow           `json:"least_window"`
	Gaps         []jsonGap            `json:"gaps"`
	Stats        monitoring.LoadStats `json:"stats"`
	ElapsedMS    int64                `json:"elapsed_ms"`
}

func newJSONSummary(s traffic.Summary, elapsed time.Duration) jsonSummary {
	out := jsonSummary{
		Paths:        make([]string, 0, len(s.Paths)),
		TotalCars:    s.Total,
		PerDay:       make([]analyzer.DayTotal, 0, len(s.PerDay)),
		TopHalfHours: make([]jsonBucket, 0, len(s.Top)),
		LeastWindow: jsonWindow{
			DatetimeRange: make([]string, 0, len(s.Least.Timestamps)),
			TotalCars:     s.Least.Sum,
		},
		Gaps:      make([]jsonGap, 0, len(s.Gaps)),
		Stats:     s.Stats,
		ElapsedMS: elapsed.Milliseconds(),
	}
	out.Paths = append(out.Paths, s.Paths...)
	out.PerDay = append(out.PerDay, s.PerDay...)
	for _, r := range s.Top {
		out.TopHalfHours = append(out.TopHalfHours, jsonBucket{
			Datetime: r.Timestamp.Format(TimestampLayout),
			Count:    r.Count,
		})
	}
	for _, ts := range s.Least.Timestamps {
		out.LeastWindow.DatetimeRange = append(out.LeastWindow.DatetimeRange, ts.Format(TimestampLayout))
	}
	for _, g := range s.Gaps {
		out.Gaps = append(out.Gaps, jsonGap{
			After:   g.After.Format(TimestampLayout),
			Before:  g.Before.Format(TimestampLayout),
			Missing: g.Missing,
		})
	}
	return out
}

func (p *Printer) printJSON(s traffic.Summary, elapsed time.Duration) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newJSONSummary(s, elapsed)); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return nil
}
