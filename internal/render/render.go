// Package render maps message text to display primitives. Presenters draw the
// segments with their own escaping (html/template, lipgloss) instead of
// trusting markup inside model output.
package render

import "strings"

type Kind string

const (
	KindText   Kind = "text"
	KindStrong Kind = "strong"
	KindRule   Kind = "rule"
	KindBreak  Kind = "break"
)

type Segment struct {
	Kind Kind
	Text string
}

const ruleLine = "---"

// Parse splits text into one segment per line. A line wrapped in ** is strong,
// a line of exactly --- is a rule, and an empty line is a paragraph break.
func Parse(text string) []Segment {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	segments := make([]Segment, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			segments = append(segments, Segment{Kind: KindBreak})
		case trimmed == ruleLine:
			segments = append(segments, Segment{Kind: KindRule})
		case isStrong(trimmed):
			segments = append(segments, Segment{Kind: KindStrong, Text: trimmed[2 : len(trimmed)-2]})
		default:
			segments = append(segments, Segment{Kind: KindText, Text: line})
		}
	}
	return collapseBreaks(segments)
}

func isStrong(line string) bool {
	return len(line) > 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**")
}

// collapseBreaks drops leading, trailing and repeated breaks, and breaks that
// sit next to a rule.
func collapseBreaks(in []Segment) []Segment {
	out := in[:0]
	for i, seg := range in {
		if seg.Kind != KindBreak {
			out = append(out, seg)
			continue
		}
		if len(out) == 0 || out[len(out)-1].Kind == KindBreak || out[len(out)-1].Kind == KindRule {
			continue
		}
		if i+1 < len(in) && in[i+1].Kind == KindRule {
			continue
		}
		out = append(out, seg)
	}
	for len(out) > 0 && out[len(out)-1].Kind == KindBreak {
		out = out[:len(out)-1]
	}
	return out
}
