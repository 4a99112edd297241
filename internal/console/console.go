// Package console renders human readable reports on the terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/nmendiboure/hicstuff/pkg/filter"
	"github.com/nmendiboure/hicstuff/pkg/pairs"
)

const barWidth = 40

// Console writes styled reports to a writer. Styling is dropped when the writer is not a terminal
// or when colours are disabled.
type Console struct {
	out   io.Writer
	color bool

	title lipgloss.Style
	muted lipgloss.Style
	uncut lipgloss.Style
	loop  lipgloss.Style
	weird lipgloss.Style
	kept  lipgloss.Style
	box   lipgloss.Style
}

// New returns a console writing to out.
func New(out io.Writer, noColor bool) *Console {
	renderer := lipgloss.NewRenderer(out)

	return &Console{
		out:   out,
		color: !noColor && IsTerminal(out),
		title: renderer.NewStyle().Bold(true),
		muted: renderer.NewStyle().Faint(true),
		uncut: renderer.NewStyle().Foreground(lipgloss.Color("2")),
		loop:  renderer.NewStyle().Foreground(lipgloss.Color("1")),
		weird: renderer.NewStyle().Foreground(lipgloss.Color("3")),
		kept:  renderer.NewStyle().Foreground(lipgloss.Color("4")),
		box: renderer.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *Console) render(style lipgloss.Style, text string) string {
	if !c.color {
		return text
	}

	return style.Render(text)
}

// Uncut highlights text about uncut events.
func (c *Console) Uncut(text string) string {
	return c.render(c.uncut, text)
}

// Loop highlights text about loop events.
func (c *Console) Loop(text string) string {
	return c.render(c.loop, text)
}

// Thresholds reports the thresholds in use.
func (c *Console) Thresholds(thr pairs.Thresholds) {
	fmt.Fprintf(c.out, "Filtering with thresholds: %s=%d %s=%d\n",
		c.Uncut("uncuts"), thr.Uncut, c.Loop("loops"), thr.Loop)
}

// Summary reports the composition of a filtered library.
func (c *Console) Summary(s *filter.Summary) {
	var b strings.Builder

	b.WriteString(c.render(c.title, "Library composition") + "\n")
	fmt.Fprintf(&b, "%d pairs discarded: %s: %d, %s: %d, weirds: %d\n",
		s.Discarded(), c.Loop("Loops"), s.Loops, c.Uncut("Uncuts"), s.Uncuts, s.Weirds)
	fmt.Fprintf(&b, "%d pairs kept (%.2f%%)\n", s.Kept(), s.KeptPercent())
	fmt.Fprintf(&b, "%.2f%% interchromosomal pairs among kept pairs", s.InterRatio())

	c.write(b.String())
}

// Composition draws one bar per event type, sized by its share of all pairs.
func (c *Console) Composition(s *filter.Summary) {
	labels := []string{"uncuts", "loops", "weirds", "intra", "inter"}
	styles := []lipgloss.Style{c.uncut, c.loop, c.weird, c.kept, c.kept}

	var b strings.Builder

	b.WriteString(c.render(c.title, "Event composition") + "\n")

	for i, frac := range s.Fractions() {
		bar := strings.Repeat("█", int(frac*barWidth+0.5))
		fmt.Fprintf(&b, "%-7s %s %s\n", labels[i], c.render(styles[i], bar), c.render(c.muted, fmt.Sprintf("%.2f%%", 100*frac)))
	}

	c.write(strings.TrimSuffix(b.String(), "\n"))
}

func (c *Console) write(text string) {
	if c.color {
		text = c.box.Render(text)
	}

	fmt.Fprintln(c.out, text)
}
