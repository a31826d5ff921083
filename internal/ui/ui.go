// Package ui renders CLI output with ANSI colors.
package ui

import (
	"fmt"
	"io"
	"strings"
)

// ANSI color codes
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Cyan    = "\033[36m"
	BrCyan  = "\033[96m"
	Green   = "\033[32m"
	BrGreen = "\033[92m"
	BrYell  = "\033[93m"
	BrRed   = "\033[91m"
	BrWhite = "\033[97m"
	DkGray  = "\033[90m"
)

const (
	Diamond = "◆"
	Bullet  = "▪"
	Arrow   = "▸"
	Check   = "✓"
	Cross   = "✗"
	Dot     = "·"
)

const boxWidth = 44

// Printer writes styled lines to w. With Plain set, escapes are dropped.
type Printer struct {
	w     io.Writer
	Plain bool
}

func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) c(code string) string {
	if p.Plain {
		return ""
	}
	return code
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Head prints a section header with a diamond bullet.
func (p *Printer) Head(text string) {
	p.printf("\n %s%s%s %s%s%s\n", p.c(BrCyan), Diamond, p.c(Reset), p.c(BrWhite), text, p.c(Reset))
}

func (p *Printer) Ok(text string) {
	p.printf(" %s%s%s %s%s%s\n", p.c(BrGreen), Check, p.c(Reset), p.c(BrWhite), text, p.c(Reset))
}

func (p *Printer) Warn(text string) {
	p.printf("   %s%s %s%s\n", p.c(BrYell), Bullet, text, p.c(Reset))
}

func (p *Printer) Err(text string) {
	p.printf("   %s%s %s%s\n", p.c(BrRed), Cross, text, p.c(Reset))
}

// Item prints a list row with a pass/fail indicator.
func (p *Printer) Item(label string, ok bool) {
	mark := p.c(BrGreen) + Check + p.c(Reset)
	if !ok {
		mark = p.c(BrRed) + Cross + p.c(Reset)
	}
	p.printf("   %s%s%s %-30s %s\n", p.c(DkGray), Bullet, p.c(Reset), label, mark)
}

// Line prints an indented dim line.
func (p *Printer) Line(text string) {
	p.printf("   %s%s %s%s\n", p.c(DkGray), Arrow, text, p.c(Reset))
}

// BoxStart prints the top border of a panel.
func (p *Printer) BoxStart(title, badge string) {
	used := VisLen(title) + 1
	badgeStr := ""
	if badge != "" {
		badgeStr = fmt.Sprintf("%s%s %s %s", p.c(BrYell), p.c(Bold), badge, p.c(Reset))
		used += VisLen(badge) + 2
	}
	pad := max(boxWidth-2-used, 1)
	p.printf("   %s┌─ %s%s%s %s%s%s┐%s\n",
		p.c(DkGray), p.c(BrWhite), title, p.c(Reset), badgeStr, p.c(DkGray), strings.Repeat("─", pad), p.c(Reset))
}

// BoxRow prints a content row inside a panel.
func (p *Printer) BoxRow(text string) {
	pad := max(boxWidth-2-VisLen(text), 0)
	p.printf("   %s│%s  %s%s%s│%s\n", p.c(DkGray), p.c(Reset), text, strings.Repeat(" ", pad), p.c(DkGray), p.c(Reset))
}

// BoxKV prints a dim key and a bright value inside a panel.
func (p *Printer) BoxKV(key, value string) {
	p.BoxRow(fmt.Sprintf("%s%-10s%s %s", p.c(DkGray), key, p.c(Reset), value))
}

func (p *Printer) BoxEnd() {
	p.printf("   %s└%s┘%s\n", p.c(DkGray), strings.Repeat("─", boxWidth), p.c(Reset))
}

// VisLen returns the printed width of s, ignoring ANSI escapes.
func VisLen(s string) int {
	n := 0
	esc := false
	for _, r := range s {
		if r == '\033' {
			esc = true
			continue
		}
		if esc {
			if r == 'm' {
				esc = false
			}
			continue
		}
		n++
	}
	return n
}
