// Package console renders short, styled lines of terminal text: the
// startup banner and the periodic stats dump. It is the terminal-output
// adaptation of the teacher's JSON chat-message builder (pkg/chat in the
// source project) — same text+style composition shape, rebuilt around ANSI
// escapes instead of a client-facing JSON chat component, since this
// protocol has no player-facing text chat for the original component to
// serve.
package console

import (
	"fmt"
	"strings"
)

// Color is the terminal's default foreground or one of seven basic ANSI
// foreground colors (black is not included).
type Color int

const (
	Default Color = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
)

var ansiCodes = map[Color]string{
	Default: "39",
	Red:     "31",
	Green:   "32",
	Yellow:  "33",
	Blue:    "34",
	Magenta: "35",
	Cyan:    "36",
	White:   "37",
}

// Span is one styled run of text, the adapted analogue of the teacher's
// chat.Message node (Text/Color/Bold/Extra).
type Span struct {
	Text string
	Color Color
	Bold  bool
}

// Colored builds a single-color span, mirroring chat.Colored.
func Colored(text string, color Color) Span {
	return Span{Text: text, Color: color}
}

// Plain builds an unstyled span, mirroring chat.Text.
func Plain(text string) Span {
	return Span{Text: text}
}

// Line composes spans into one ANSI-escaped line.
func Line(spans ...Span) string {
	var b strings.Builder
	for _, s := range spans {
		code := ansiCodes[s.Color]
		if s.Bold {
			b.WriteString(fmt.Sprintf("\x1b[1;%sm%s\x1b[0m", code, s.Text))
		} else {
			b.WriteString(fmt.Sprintf("\x1b[%sm%s\x1b[0m", code, s.Text))
		}
	}
	return b.String()
}

// Field renders a "label: value" pair with the label colored, used by the
// stats dump to keep output scannable.
func Field(label string, value any) string {
	return Line(Colored(label+": ", Cyan), Plain(fmt.Sprintf("%v", value)))
}
