package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/valpere/sentinel/internal"
)

// UI provides colored output for the CLI.
type UI struct {
	Out    io.Writer
	ErrOut io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
)

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// StatusColor colors a verification status by risk.
func StatusColor(status internal.Status) string {
	s := string(status)
	switch status {
	case internal.StatusSafe:
		return green(s)
	case internal.StatusReview:
		return yellow(s)
	case internal.StatusUnsafe:
		return red(s)
	default:
		return s
	}
}

// LabelColor colors a sentiment label.
func LabelColor(label internal.Label) string {
	s := string(label)
	switch label {
	case internal.Positive:
		return green(s)
	case internal.Negative:
		return red(s)
	case internal.Neutral:
		return cyan(s)
	default:
		return s
	}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 3 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func formatScore(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

// Results renders one row per record.
func (u *UI) Results(records []internal.ResultRecord) error {
	table := u.Table([]string{"#", "Comment", "Lang", "Sentiment", "Score", "Round-trip", "Status", "Error"})
	for i, r := range records {
		table.Append([]string{
			strconv.Itoa(i + 1),
			Truncate(r.Original, 40),
			r.DetectedLang,
			LabelColor(r.SentimentLabel),
			formatScore(r.SentimentScore),
			formatScore(r.RoundTripScore),
			StatusColor(r.RoundTripStatus),
			red(Truncate(r.Error, 40)),
		})
	}
	return table.Render()
}

// TableSink prints the batch as a table.
type TableSink struct {
	UI *UI
}

func (s TableSink) Push(ctx context.Context, records []internal.ResultRecord) error {
	return s.UI.Results(records)
}

// JSONSink writes the batch as a JSON array, the dataset format consumers
// read.
type JSONSink struct {
	Path string
}

func (s JSONSink) Push(ctx context.Context, records []internal.ResultRecord) error {
	if records == nil {
		records = []internal.ResultRecord{}
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(s.Path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
