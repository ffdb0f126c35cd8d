package main

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/colorprofile"

	"github.com/mark3labs/alertr/internal/tui/theme"
)

// outputProfile detects the color support of w.
func outputProfile(w io.Writer) colorprofile.Profile {
	return colorprofile.Detect(w, os.Environ())
}

func plainProfile(p colorprofile.Profile) bool {
	return p == colorprofile.NoTTY || p == colorprofile.Ascii
}

// glamourStyle picks the glamour style for the given output.
func glamourStyle(p colorprofile.Profile) string {
	if plainProfile(p) {
		return "notty"
	}
	return "dark"
}

// highlight syntax-highlights source for the terminal. Plain outputs and
// unknown languages get the source unchanged.
func highlight(source, language string, p colorprofile.Profile) string {
	if plainProfile(p) {
		return source
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return source
	}

	formatter := formatters.Get("terminal256")
	if p == colorprofile.TrueColor {
		formatter = formatters.Get("terminal16m")
	}
	if p == colorprofile.ANSI {
		formatter = formatters.Get("terminal16")
	}
	if formatter == nil {
		return source
	}

	baseStyle := styles.Get("catppuccin-mocha")
	if baseStyle == nil {
		baseStyle = styles.Fallback
	}
	// Match the TUI background instead of the style's own.
	bg := chroma.MustParseColour(theme.Current().BgBase)
	style, err := baseStyle.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
		entry.Background = bg
		return entry
	}).Build()
	if err != nil {
		style = baseStyle
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return buf.String()
}

// configDiff returns a unified diff between two versions of a file, or "" when
// they are equal.
func configDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	return strings.TrimRight(udiff.Unified(path, path+" (novo)", before, after), "\n")
}
