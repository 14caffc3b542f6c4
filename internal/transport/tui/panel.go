package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kailas-cloud/boostube/internal/domain/keyword"
	"github.com/kailas-cloud/boostube/internal/domain/shape"
	"github.com/kailas-cloud/boostube/internal/domain/state"
	"github.com/kailas-cloud/boostube/internal/domain/tool"
)

var (
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleLoading = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleFailure = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleBar     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

const (
	loadingText = "Loading..."
	barWidth    = 30
	volumeScale = "low        medium        high        very high"
)

// line is one styled row of the result panel.
type line struct {
	text  string
	style tcell.Style
}

// resultLines lays out the panel content for st at the given width.
func resultLines(t tool.Tool, st state.State, width int) []line {
	width = max(width, 1)
	switch st.Kind() {
	case state.Loading:
		return []line{{loadingText, styleLoading}}
	case state.Failure:
		return styled(wrap(st.Message(), width), styleFailure)
	case state.Success:
		if m, ok := st.Keyword(); ok {
			return keywordLines(m, width)
		}
		if t.Shape != nil && t.Shape.Name() == (shape.Verbatim{}).Name() {
			var out []line
			for _, para := range st.Items() {
				for _, l := range strings.Split(para, "\n") {
					out = append(out, styled(wrap(l, width), styleText)...)
				}
			}
			return out
		}
		return listLines(st.Items(), width)
	default:
		return []line{{t.Description, styleDim}}
	}
}

func listLines(items []string, width int) []line {
	var out []line
	for i, item := range items {
		prefix := strconv.Itoa(i+1) + ". "
		indent := strings.Repeat(" ", runewidth.StringWidth(prefix))
		for j, l := range wrap(item, width-len(indent)) {
			if j == 0 {
				out = append(out, line{prefix + l, styleText})
			} else {
				out = append(out, line{indent + l, styleText})
			}
		}
	}
	return out
}

func keywordLines(m keyword.Metric, width int) []line {
	bw := min(barWidth, max(width-20, 5))
	filled := int(math.Round(m.ScoreFraction() * float64(bw)))
	bar := "[" + strings.Repeat("█", filled) + strings.Repeat("░", bw-filled) + "]"

	out := []line{
		{"Keyword: " + m.Keyword, styleTitle},
		{"", styleText},
		{fmt.Sprintf("Popularity %s %d / %d", bar, m.PopularityScore, keyword.MaxPopularityScore), styleBar},
		{"", styleText},
		{"Search volume: " + string(m.SearchVolume), styleText},
	}

	scale := runewidth.Truncate(volumeScale, width, "")
	out = append(out, line{scale, styleDim})
	if m.SearchVolume.Known() {
		sw := runewidth.StringWidth(scale)
		col := m.SearchVolume.Position() * (sw - 1) / 100
		out = append(out, line{strings.Repeat(" ", max(col, 0)) + "▲", styleBar})
	}
	return out
}

func styled(texts []string, style tcell.Style) []line {
	out := make([]line, len(texts))
	for i, t := range texts {
		out[i] = line{t, style}
	}
	return out
}

// wrap breaks s into rows no wider than width display columns, on spaces
// where possible.
func wrap(s string, width int) []string {
	width = max(width, 1)
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var rows []string
	var cur strings.Builder
	curW := 0
	flush := func() {
		rows = append(rows, cur.String())
		cur.Reset()
		curW = 0
	}
	for _, w := range words {
		ww := runewidth.StringWidth(w)
		for ww > width {
			if curW > 0 {
				flush()
			}
			head := runewidth.Truncate(w, width, "")
			if head == "" {
				head = string([]rune(w)[:1])
			}
			rows = append(rows, head)
			w = strings.TrimPrefix(w, head)
			ww = runewidth.StringWidth(w)
		}
		switch {
		case curW == 0:
		case curW+1+ww <= width:
			cur.WriteByte(' ')
			curW++
		default:
			flush()
		}
		cur.WriteString(w)
		curW += ww
	}
	if curW > 0 {
		flush()
	}
	return rows
}

// putString draws s at (x, y) clipped to maxW columns and returns the columns used.
func putString(s tcell.Screen, x, y, maxW int, str string, style tcell.Style) int {
	col := 0
	for _, r := range str {
		rw := runewidth.RuneWidth(r)
		if col+rw > maxW {
			break
		}
		s.SetContent(x+col, y, r, nil, style)
		col += rw
	}
	return col
}
