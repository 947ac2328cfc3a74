// Package render prints chains for terminals.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/seclist/pkg/chain"
	"github.com/papercomputeco/seclist/pkg/logger"
)

// Printer writes styled chain output to a writer.
type Printer struct {
	w       io.Writer
	digestW int
	index   lipgloss.Style
	value   lipgloss.Style
	digest  lipgloss.Style
	ok      lipgloss.Style
	bad     lipgloss.Style
	dim     lipgloss.Style
}

// NewPrinter returns a Printer for w. With color disabled all styling is dropped.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Printer{
		w:       w,
		digestW: 23,
		index:   r.NewStyle().Width(4).Align(lipgloss.Right).Foreground(lipgloss.Color("8")),
		value:   r.NewStyle().Bold(true),
		digest:  r.NewStyle().Foreground(lipgloss.Color("6")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		bad:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		dim:     r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Chain prints one line per entry, marking entries that appear in mismatches.
func (p *Printer) Chain(entries []chain.Entry, mismatches []chain.Mismatch) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.dim.Render("(empty chain)"))
		return
	}

	bad := make(map[int]bool, len(mismatches))
	for _, m := range mismatches {
		bad[m.Index] = true
	}

	for _, e := range entries {
		mark := p.ok.Render("ok")
		if bad[e.Index] {
			mark = p.bad.Render("!!")
		}

		link := p.dim.Render("-> ")
		if !e.HasNext {
			link = p.dim.Render("-| ")
		}

		fmt.Fprintf(p.w, "%s %s %s%s %s\n",
			p.index.Render(fmt.Sprint(e.Index)),
			mark,
			link,
			p.digest.Render(logger.Short(e.Digest.String(), p.digestW)),
			p.value.Render(e.Value),
		)
	}
}

// Verdict prints the outcome of a verification.
func (p *Printer) Verdict(mismatches []chain.Mismatch) {
	if len(mismatches) == 0 {
		fmt.Fprintln(p.w, p.ok.Render("chain is valid"))
		return
	}

	indexes := make([]string, 0, len(mismatches))
	for _, m := range mismatches {
		indexes = append(indexes, fmt.Sprint(m.Index))
	}

	origin := mismatches[len(mismatches)-1]
	fmt.Fprintf(p.w, "%s at [%s]; tampering starts at index %d (stored %s, expected %s)\n",
		p.bad.Render("chain is INVALID"),
		strings.Join(indexes, " "),
		origin.Index,
		logger.Short(origin.Stored.String(), p.digestW),
		logger.Short(origin.Expected.String(), p.digestW),
	)
}

// Line prints a plain status line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Error prints a highlighted error line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, p.bad.Render("error:")+" "+fmt.Sprintf(format, args...))
}
