package ui

import (
	"fmt"
	"strings"
)

const progressBarWidth = 30

// Progress is a single-line progress bar redrawn in place. It tracks the
// page walk for one user and shows the running count of selected posts.
type Progress struct {
	label   string
	total   int
	current int
	posts   int
}

// NewProgress creates a progress bar over total units
func NewProgress(label string, total int) *Progress {
	return &Progress{label: label, total: total}
}

// Advance moves the bar forward one unit and updates the post counter
func (p *Progress) Advance(posts int) {
	p.current++
	p.posts = posts
	p.render()
}

// Done finishes the line. Safe to call after an early break.
func (p *Progress) Done() {
	if quiet.Load() || p.total == 0 {
		return
	}
	p.render()
	fmt.Println()
}

func (p *Progress) render() {
	if quiet.Load() || p.total == 0 {
		return
	}

	current := p.current
	if current > p.total {
		current = p.total
	}
	filled := current * progressBarWidth / p.total

	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	fmt.Printf("\r[%s] %d/%d %s | %d posts", bar, current, p.total, p.label, p.posts)
}
