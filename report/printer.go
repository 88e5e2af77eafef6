// Package report renders a traffic summary for people (text tables) or for
// other programs (JSON).
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/davidvella/traffic"
	"github.com/davidvella/traffic/record"
)

// TimestampLayout is how bucket timestamps are written in every format.
const TimestampLayout = "2006-01-02T15:04:05"

// Format selects the output encoding.
type Format int

const (
	// Text renders banners and tables.
	Text Format = iota
	// JSON renders one JSON object.
	JSON
)

// ParseFormat parses "text" or "json".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return Text, fmt.Errorf("invalid output format %q: must be text or json", s)
	}
}

// ColorMode represents color output mode
type ColorMode int

const (
	// ColorAuto enables colors when writing to a terminal (default)
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever forces colors off
	ColorNever
)

// ParseColorMode parses a string into a ColorMode
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors determines whether to use colors based on mode and environment
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return !color.NoColor
	}
}

// Options configures a Printer.
type Options struct {
	Format    Format
	ColorMode ColorMode
	// WindowSize labels the quietest-window section.
	WindowSize int
}

// Printer writes summaries to an output stream.
type Printer struct {
	out        io.Writer
	format     Format
	useColors  bool
	windowSize int
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	return &Printer{
		out:        w,
		format:     opts.Format,
		useColors:  ResolveColors(opts.ColorMode),
		windowSize: opts.WindowSize,
	}
}

// Print renders s in the printer's format. elapsed is the wall time spent
// loading and analysing.
func (p *Printer) Print(s traffic.Summary, elapsed time.Duration) error {
	if p.format == JSON {
		return p.printJSON(s, elapsed)
	}
	return p.printText(s, elapsed)
}

func (p *Printer) printText(s traffic.Summary, elapsed time.Duration) error {
	paths := "(none)"
	if len(s.Paths) > 0 {
		paths = strings.Join(s.Paths, ", ")
	}
	p.line(color.FgCyan, "Analyzing traffic logs: %s", paths)

	p.header("Traffic summary")
	fmt.Fprintf(p.out, "%s %d\n", p.bold("Total cars:"), s.Total)

	p.header("Cars per day")
	if len(s.PerDay) == 0 {
		p.dim("no data")
	} else {
		t := NewTable(p.out, []string{"Date", "Total cars"})
		for _, d := range s.PerDay {
			t.AddRow([]string{d.Date, fmt.Sprint(d.Total)})
		}
		if err := t.Render(); err != nil {
			return err
		}
	}

	p.header(fmt.Sprintf("Top %d half-hours", len(s.Top)))
	if len(s.Top) == 0 {
		p.dim("no data")
	} else {
		t := NewTable(p.out, []string{"Datetime", "Count"})
		for _, r := range s.Top {
			t.AddRow([]string{r.Timestamp.Format(TimestampLayout), fmt.Sprint(r.Count)})
		}
		if err := t.Render(); err != nil {
			return err
		}
	}

	p.header(p.windowTitle())
	if len(s.Least.Timestamps) == 0 {
		p.dim("no contiguous window")
	} else {
		fmt.Fprintf(p.out, "%s %d\n", p.bold("Total cars:"), s.Least.Sum)
		for _, ts := range s.Least.Timestamps {
			fmt.Fprintf(p.out, "  %s\n", ts.Format(TimestampLayout))
		}
	}

	if len(s.Gaps) > 0 {
		missing := 0
		for _, g := range s.Gaps {
			missing += g.Missing
		}
		p.line(color.FgYellow, "\n%d gaps in the log (%d missing half-hours)", len(s.Gaps), missing)
	}

	fmt.Fprintln(p.out)
	p.dim(fmt.Sprintf("Loaded %d rows from %d files (%d rows skipped, %d files failed)",
		s.Stats.RowsLoaded, s.Stats.FilesLoaded, s.Stats.RowsSkipped, s.Stats.FilesFailed))
	p.line(color.FgGreen, "Done in %d ms", elapsed.Milliseconds())
	return nil
}

func (p *Printer) windowTitle() string {
	k := p.windowSize
	if k <= 0 {
		k = 1
	}
	span := time.Duration(k) * record.Interval
	return fmt.Sprintf("Quietest %s (%d contiguous half-hours)", formatSpan(span), k)
}

// formatSpan renders whole hours as "2 hours" and the rest as "1.5 hours" or "30 minutes".
func formatSpan(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	h := d.Hours()
	if h == 1 {
		return "1 hour"
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", h), "0"), ".") + " hours"
}

func (p *Printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (p *Printer) line(attr color.Attribute, format string, args ...any) {
	p.paint(attr).Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) header(title string) {
	p.paint(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
	p.paint(color.FgWhite).Fprintf(p.out, "%s\n", strings.Repeat("=", len(title)))
}

func (p *Printer) bold(text string) string {
	return p.paint(color.Bold).Sprint(text)
}

func (p *Printer) dim(text string) {
	p.paint(color.Faint).Fprintln(p.out, text)
}
