// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/highlight.go
// Summary: Syntax-highlighted text content built on chroma token styles.

package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texeldock/dock"
)

const defaultChromaStyle = "catppuccin-mocha"

// HighlightContent shows text colored by a chroma lexer. Source is called on
// every draw so the text can follow live state.
type HighlightContent struct {
	Source func() string
	Lexer  string
	Style  string
}

func (h *HighlightContent) Draw(c Canvas, r dock.Rect, base tcell.Style) {
	fill(c, r, base)
	if h.Source == nil || r.W <= 0 || r.H <= 0 {
		return
	}
	text := h.Source()
	style := styles.Get(h.Style)
	if h.Style == "" {
		style = styles.Get(defaultChromaStyle)
	}

	lexer := lexers.Get(h.Lexer)
	if lexer == nil {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iter, err := chroma.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		(&TextContent{Lines: strings.Split(text, "\n")}).Draw(c, r, base)
		return
	}

	baseColour := style.Get(chroma.Text).Colour
	x, y := r.X, r.Y
	for _, tok := range iter.Tokens() {
		cell := tokenStyle(base, style.Get(tok.Type), baseColour)
		for _, ch := range tok.Value {
			if ch == '\n' {
				x, y = r.X, y+1
				continue
			}
			if y >= r.Y+r.H {
				return
			}
			w := runewidth.RuneWidth(ch)
			if w == 0 || x+w > r.X+r.W {
				continue
			}
			c.SetContent(x, y, ch, nil, cell)
			x += w
		}
	}
}

func tokenStyle(base tcell.Style, entry chroma.StyleEntry, baseColour chroma.Colour) tcell.Style {
	s := base
	if entry.Colour.IsSet() && entry.Colour != baseColour {
		s = s.Foreground(tcell.NewRGBColor(int32(entry.Colour.Red()), int32(entry.Colour.Green()), int32(entry.Colour.Blue())))
	}
	if entry.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		s = s.Underline(true)
	}
	return s
}
