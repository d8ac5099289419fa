package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

type Options struct {
	JSON    bool
	Plain   bool
	Quiet   bool
	Verbose bool
	NoColor bool
	// Interactive redraws progress in place instead of printing a line per step.
	Interactive bool

	Stdout io.Writer
	Stderr io.Writer
}

type Output struct {
	JSON        bool
	Plain       bool
	Quiet       bool
	Verbose     bool
	Interactive bool

	stdout io.Writer
	stderr io.Writer

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	gray   *color.Color
	bold   *color.Color

	lastPercent int
}

func New(opts Options) *Output {
	if opts.NoColor || opts.Plain {
		color.NoColor = true
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Output{
		JSON:        opts.JSON,
		Plain:       opts.Plain,
		Quiet:       opts.Quiet,
		Verbose:     opts.Verbose,
		Interactive: opts.Interactive && !opts.Plain,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		green:       color.New(color.FgGreen),
		yellow:      color.New(color.FgYellow),
		red:         color.New(color.FgRed),
		gray:        color.New(color.FgHiBlack),
		bold:        color.New(color.Bold),
		lastPercent: -1,
	}
}

func (o *Output) Green(s string) string {
	return o.green.Sprint(s)
}

func (o *Output) Yellow(s string) string {
	return o.yellow.Sprint(s)
}

func (o *Output) Red(s string) string {
	return o.red.Sprint(s)
}

func (o *Output) Gray(s string) string {
	return o.gray.Sprint(s)
}

func (o *Output) Bold(s string) string {
	return o.bold.Sprint(s)
}

func (o *Output) silent() bool {
	return o.JSON || o.Quiet
}

func (o *Output) Info(msg string) {
	if o.silent() {
		return
	}
	fmt.Fprintln(o.stdout, msg)
}

func (o *Output) Success(msg string) {
	if o.silent() {
		return
	}
	fmt.Fprintln(o.stdout, o.Green(msg))
}

func (o *Output) Warn(msg string) {
	if o.silent() {
		return
	}
	fmt.Fprintln(o.stdout, o.Yellow(msg))
}

func (o *Output) Debug(msg string) {
	if o.JSON || !o.Verbose {
		return
	}
	fmt.Fprintln(o.stderr, o.Gray(msg))
}

func (o *Output) Error(msg string) {
	fmt.Fprintln(o.stderr, o.Red(msg))
}

func (o *Output) Print(msg string) {
	if o.silent() {
		return
	}
	fmt.Fprintln(o.stdout, msg)
}

func (o *Output) Write(msg string) {
	if o.silent() {
		return
	}
	fmt.Fprint(o.stdout, msg)
}

func (o *Output) EmitJSON(v any) error {
	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

const barWidth = 24

// Progress renders percent for label. Repeated percents are dropped. Interactive
// output redraws one line and ends it at 100.
func (o *Output) Progress(label string, percent int) {
	if o.silent() || percent == o.lastPercent {
		return
	}
	percent = max(0, min(percent, 100))
	o.lastPercent = percent
	if !o.Interactive {
		fmt.Fprintf(o.stdout, "%s %d%%\n", label, percent)
		if percent == 100 {
			o.lastPercent = -1
		}
		return
	}

	filled := percent * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	fmt.Fprintf(o.stdout, "\r%s %s %3d%%", label, o.Green(bar), percent)
	if percent == 100 {
		fmt.Fprintln(o.stdout)
		o.lastPercent = -1
	}
}

// Ago renders t relative to now, e.g. "3 minutes ago".
func Ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// Length renders a playlist length, e.g. "1h 02m" or "3m 05s".
func Length(d time.Duration) string {
	d = d.Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
}

// Count renders n with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}
