package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░]  45% for a whole-number
// percentage. Green from 67, yellow from 34, red below.
func RenderProgress(pct int, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if width < 2 {
		width = 2
	}

	filled := pct * width / 100
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 34:
		style = StyleRed
	case pct < 67:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3d%%", style.Render(bar), pct)
}

// RenderCount renders "done/total" dimmed when nothing is left.
func RenderCount(done, total int) string {
	s := fmt.Sprintf("%d/%d", done, total)
	if total > 0 && done >= total {
		return StyleGreen.Render(s)
	}
	return s
}
