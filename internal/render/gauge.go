package render

import (
	"math"
	"strings"

	"github.com/derickschaefer/aquarius/internal/util"
)

const (
	gaugeRows  = 10
	gaugeWidth = 16
	barWidth   = 20
)

// Gauge draws a bucket filled to pct, one line per row, top first. The top
// filled row shows the water surface; the fill level is labelled on its
// right.
func Gauge(pct float64, rows int) []string {
	if rows <= 0 {
		return nil
	}
	filled := fillCount(pct, rows)
	inside := gaugeWidth - 2
	lines := make([]string, 0, rows+1)
	for i := 0; i < rows; i++ {
		fromBottom := rows - i
		var body string
		switch {
		case fromBottom > filled:
			body = strings.Repeat(" ", inside)
		case fromBottom == filled:
			body = strings.Repeat("~", inside)
		default:
			body = strings.Repeat("#", inside)
		}
		line := "  |" + body + "|"
		if fromBottom == filled || (filled == 0 && fromBottom == 1) {
			line += "  " + util.FormatPercent(pct)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "  \\"+strings.Repeat("_", inside)+"/")
	return lines
}

// Bar draws a horizontal bar of width cells filled to pct.
func Bar(pct float64, width int) string {
	n := fillCount(pct, width)
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func fillCount(pct float64, cells int) int {
	pct = math.Max(0, math.Min(100, pct))
	return int(math.Round(pct / 100 * float64(cells)))
}
