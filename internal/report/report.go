// Package report renders run progress and the final result card on the
// terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const cardWidth = 64

type Printer struct {
	w io.Writer

	title  lipgloss.Style
	step   lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
	arrow  lipgloss.Style
	dim    lipgloss.Style
	bright lipgloss.Style
	card   lipgloss.Style
	label  lipgloss.Style
}

// New returns a Printer writing to w. Colors are dropped automatically
// when w is not a terminal.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("14")).Padding(0, 2),
		step:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		ok:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		fail:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		arrow:  r.NewStyle().Foreground(lipgloss.Color("12")),
		dim:    r.NewStyle().Faint(true),
		bright: r.NewStyle().Foreground(lipgloss.Color("15")),
		card:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("14")).Padding(0, 1).Width(cardWidth),
		label:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
	}
}

func (p *Printer) Banner(title, subtitle string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.title.Render(title+"\n"+subtitle))
	fmt.Fprintln(p.w)
}

func (p *Printer) Step(n int, title string) {
	fmt.Fprintln(p.w, p.step.Render(fmt.Sprintf("┌─ Step %d: %s", n, title)))
}

func (p *Printer) Done(msg string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.ok.Render("✓"), msg)
}

func (p *Printer) Fail(msg string, err error) {
	fmt.Fprintf(p.w, "  %s %s: %v\n", p.fail.Render("✗"), msg, err)
}

// Detail prints text as a quoted preview, or placeholder when text is
// blank.
func (p *Printer) Detail(text, placeholder string, limit int) {
	text = strings.TrimSpace(text)
	var body string
	if text == "" {
		body = p.dim.Render(placeholder)
	} else {
		body = p.bright.Render(fmt.Sprintf("%q", Truncate(text, limit)))
	}
	fmt.Fprintf(p.w, "  %s %s\n", p.arrow.Render("→"), body)
}

func (p *Printer) Line(s string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.arrow.Render("→"), s)
}

func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

// Summary prints the response in a bordered box.
func (p *Printer) Summary(response string) {
	fmt.Fprintln(p.w, p.card.Render(p.label.Render("Summary:")+"\n"+response))
	fmt.Fprintln(p.w)
}

// Card renders the result panel: what was said and the response.
func (p *Printer) Card(transcript, response string) {
	said := strings.TrimSpace(transcript)
	if said == "" {
		said = p.dim.Render("You didn't say anything, but I can see your screen...")
	}
	body := strings.Join([]string{
		p.label.Render("Whispr") + " " + p.dim.Render("AI"),
		"",
		p.label.Render("What you said"),
		said,
		"",
		p.label.Render("Whispr response"),
		response,
	}, "\n")
	fmt.Fprintln(p.w, p.card.Render(body))
}

// Truncate shortens s to at most limit runes, marking the cut with "...".
func Truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}
