package monitor

import (
	"fmt"
	"os"
	"strings"

	"codeberg.org/veldr/pointerstat/internal/metrics"
	"golang.org/x/term"
)

const (
	colorCyan   = "\033[0;36m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorReset  = "\033[0m"

	clearLine = "\033[2K"

	// Meter full-scale values; anything beyond pegs the bar
	rateScaleHz   = 8000.0
	speedScaleMPS = 5.0

	blockLines = 5
)

// Renderer draws live readouts in place on a terminal. On a non-terminal
// stdout it degrades to plain line output.
type Renderer struct {
	out     *os.File
	isTerm  bool
	started bool
}

func New() *Renderer {
	out := os.Stdout
	return &Renderer{
		out:    out,
		isTerm: term.IsTerminal(int(out.Fd())),
	}
}

// Render draws one refresh snapshot
func (r *Renderer) Render(snap metrics.Snapshot) {
	if !r.isTerm {
		fmt.Fprintf(r.out, "rate=%d speed=%.4f max=%.4f dpi=%.0f delta=(%d,%d)\n",
			snap.PollingRate, snap.Speed, snap.MaxSpeed, snap.DPI, snap.DeltaX, snap.DeltaY)
		return
	}

	width, _, err := term.GetSize(int(r.out.Fd()))
	if err != nil || width < 40 {
		width = 80
	}
	barWidth := width - 30
	if barWidth > 60 {
		barWidth = 60
	}

	if r.started {
		// Redraw over the previous block
		fmt.Fprintf(r.out, "\033[%dA", blockLines)
	}
	r.started = true

	fmt.Fprintf(r.out, "%s%spointerstat%s  %st=%.1fs  dpi=%.0f  delta=(%d,%d)%s\n",
		clearLine, colorBold, colorReset, colorDim, snap.Elapsed, snap.DPI, snap.DeltaX, snap.DeltaY, colorReset)
	fmt.Fprintf(r.out, "%s%sPolling Rate%s  %6d Hz  %s\n",
		clearLine, colorCyan, colorReset, snap.PollingRate, meter(float64(snap.PollingRate)/rateScaleHz, barWidth))
	fmt.Fprintf(r.out, "%s%sSpeed%s         %6.4f m/s %s\n",
		clearLine, colorGreen, colorReset, snap.Speed, meter(snap.Speed/speedScaleMPS, barWidth))
	fmt.Fprintf(r.out, "%s%sMax Speed%s     %6.4f m/s\n",
		clearLine, colorYellow, colorReset, snap.MaxSpeed)
	fmt.Fprintf(r.out, "%s%swindow=%.0fms  samples: speed=%d polling=%d%s\n",
		clearLine, colorDim, snap.WindowSeconds*1000, len(snap.SpeedHistory), len(snap.PollingHistory), colorReset)
}

// meter renders a fixed-width bar filled to the given fraction
func meter(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))

	var b strings.Builder
	b.WriteString(colorDim)
	b.WriteString("[")
	b.WriteString(colorReset)
	b.WriteString(strings.Repeat("|", filled))
	b.WriteString(strings.Repeat(" ", width-filled))
	b.WriteString(colorDim)
	b.WriteString("]")
	b.WriteString(colorReset)
	return b.String()
}
