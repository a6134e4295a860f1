// Package progress renders a terminal progress bar for bulk uploads.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const fallbackWidth = 80

// Bar is a single-line progress bar. It implements the
// modelclient.ProgressReporter interface.
type Bar struct {
	mu     sync.Mutex
	w      io.Writer
	out    *termenv.Output
	width  int
	kind   string
	total  int
	count  int
	active bool
}

// New returns a bar writing to w. When w is a terminal, the bar adapts to
// its width; otherwise a fixed width is used.
func New(w io.Writer) *Bar {
	width := fallbackWidth
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			width = tw
		}
	}
	return &Bar{
		w:     w,
		out:   termenv.NewOutput(w),
		width: width,
	}
}

// Start begins a new labeled bar.
func (b *Bar) Start(kind string, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kind = kind
	b.total = total
	b.count = 0
	b.active = true
	b.render()
}

// Add advances the bar by n objects.
func (b *Bar) Add(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return
	}
	b.count += n
	if b.count > b.total {
		b.count = b.total
	}
	b.render()
}

// Done finishes the current bar and moves to the next line.
func (b *Bar) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return
	}
	b.render()
	fmt.Fprintln(b.w)
	b.active = false
}

func (b *Bar) render() {
	label := b.out.String("Uploading " + b.kind).Foreground(b.out.Color("6")).String()
	counts := fmt.Sprintf("%d/%d", b.count, b.total)

	// Space left for the bar itself, between label and counts.
	barWidth := b.width - len("Uploading "+b.kind) - len(counts) - 6
	if barWidth < 10 {
		barWidth = 10
	}
	filled := 0
	if b.total > 0 {
		filled = barWidth * b.count / b.total
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)

	fmt.Fprintf(b.w, "\r%s [%s] %s", label, bar, counts)
}
