package main

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/poker-mcts/internal/equity"
	"github.com/lox/poker-mcts/poker"
)

// display renders results. Colors follow the output's terminal profile and are
// dropped entirely with --no-color or when writing to a pipe.
type display struct {
	w io.Writer

	headerStyle   lipgloss.Style
	handStyle     lipgloss.Style
	winStyle      lipgloss.Style
	categoryStyle lipgloss.Style
	dimStyle      lipgloss.Style
}

func newDisplay(w io.Writer, noColor bool) *display {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return &display{
		w:             w,
		headerStyle:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		handStyle:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		winStyle:      r.NewStyle().Foreground(lipgloss.Color("10")),
		categoryStyle: r.NewStyle().Foreground(lipgloss.Color("12")),
		dimStyle:      r.NewStyle().Faint(true),
	}
}

func (d *display) result(hole [2]poker.Card, res equity.Result) {
	fmt.Fprintf(d.w, "%s win rate: %s %s\n",
		d.handStyle.Render(poker.FormatCards(hole[:])),
		d.winStyle.Render(fmt.Sprintf("%.4f", res.WinRate())),
		d.categoryStyle.Render("("+string(poker.CategorizeHoleCards(hole[0], hole[1]))+")"))
	fmt.Fprintln(d.w, d.dimStyle.Render(summary(res)))
}

func (d *display) comparison(hole [2]poker.Card, results []methodResult) {
	fmt.Fprintf(d.w, "%s %s\n\n",
		d.handStyle.Render(poker.FormatCards(hole[:])),
		d.categoryStyle.Render("("+string(poker.CategorizeHoleCards(hole[0], hole[1]))+")"))

	// Use tabwriter for proper alignment
	tw := tabwriter.NewWriter(d.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		d.headerStyle.Render("method"),
		d.headerStyle.Render("win rate"),
		d.headerStyle.Render("95% ci"))
	for _, mr := range results {
		lo, hi := mr.result.ConfidenceInterval()
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			string(mr.method),
			d.winStyle.Render(fmt.Sprintf("%.4f", mr.result.WinRate())),
			fmt.Sprintf("[%.4f, %.4f]", lo, hi))
	}
	tw.Flush()
}

func summary(res equity.Result) string {
	lo, hi := res.ConfidenceInterval()
	s := fmt.Sprintf("%d simulations", res.Visits)
	if res.Nodes > 0 {
		s += fmt.Sprintf(", %d nodes", res.Nodes)
	}
	return s + fmt.Sprintf(", 95%% ci [%.4f, %.4f] in %v", lo, hi, res.Elapsed.Truncate(time.Millisecond))
}

// progressBar draws a bubbles progress bar on a single, rewritten line.
type progressBar struct {
	mu    sync.Mutex
	w     io.Writer
	model progress.Model
	drawn bool
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		w:     w,
		model: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *progressBar) update(done, total int) {
	if total <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r%s", p.model.ViewAs(float64(done)/float64(total)))
	p.drawn = true
}

func (p *progressBar) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.w)
	}
}
