package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/Microindole/lency/internal/config"
)

var (
	colorError   = lipgloss.Color("#FF6B9D")
	colorWarning = lipgloss.Color("#F7DC6F")
	colorInfo    = lipgloss.Color("#56C3F4")
	colorHint    = lipgloss.Color("#5AF78E")
	colorMuted   = lipgloss.Color("#6C7086")

	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
	styleInfo    = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	styleHint    = lipgloss.NewStyle().Bold(true).Foreground(colorHint)
	styleGutter  = lipgloss.NewStyle().Foreground(colorMuted)
	styleCaret   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
)

// Renderer prints diagnostics with a source snippet and caret underline:
//
//	path:line:col: level: message
//	    var x = foo(
//	            ^^^
//	    note: ...
//	    help: ...
type Renderer struct {
	out     io.Writer
	color   bool
	sources map[string]string // file path -> content, for snippets
}

func NewRenderer(out io.Writer) *Renderer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if os.Getenv("NO_COLOR") != "" || config.IsTestMode {
		color = false
	}
	return &Renderer{out: out, color: color, sources: make(map[string]string)}
}

// AddSource registers file content so snippets can be extracted without
// re-reading the file.
func (r *Renderer) AddSource(path, content string) {
	r.sources[path] = content
}

func (r *Renderer) levelStyle(l Level) lipgloss.Style {
	switch l {
	case Error:
		return styleError
	case Warning:
		return styleWarning
	case Info:
		return styleInfo
	default:
		return styleHint
	}
}

func (r *Renderer) paint(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

// Render prints every diagnostic in the sink, sorted by (file, offset),
// followed by a one-line summary. Returns the number of errors printed.
func (r *Renderer) Render(sink *Sink) int {
	errs, warns := 0, 0
	for _, d := range sink.Diagnostics() {
		r.renderOne(d)
		switch d.Level {
		case Error:
			errs++
		case Warning:
			warns++
		}
	}
	if errs > 0 || warns > 0 {
		summary := fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
		fmt.Fprintln(r.out, r.paint(styleGutter, summary))
	}
	return errs
}

func (r *Renderer) renderOne(d *Diagnostic) {
	head := fmt.Sprintf("%s:%d:%d: ", d.Span.File, d.Span.Line, d.Span.Column)
	level := r.paint(r.levelStyle(d.Level), d.Level.String())
	fmt.Fprintf(r.out, "%s%s: %s\n", head, level, d.Message)

	if src, ok := r.sources[d.Span.File]; ok && d.Span.Line > 0 {
		line, startCol := extractLine(src, d.Span.Start)
		fmt.Fprintf(r.out, "    %s\n", line)
		width := d.Span.End - d.Span.Start
		if width < 1 {
			width = 1
		}
		if width > len(line)-startCol {
			width = len(line) - startCol
			if width < 1 {
				width = 1
			}
		}
		caret := strings.Repeat(" ", startCol) + strings.Repeat("^", width)
		fmt.Fprintf(r.out, "    %s\n", r.paint(styleCaret, caret))
	}

	for _, n := range d.Notes {
		fmt.Fprintf(r.out, "    %s %s\n", r.paint(styleInfo, "note:"), n)
	}
	for _, s := range d.Suggestions {
		fmt.Fprintf(r.out, "    %s %s\n", r.paint(styleHint, "help:"), s)
	}
}

// extractLine returns the source line containing byte offset plus the
// column (byte index within that line) where the span starts.
func extractLine(src string, offset int) (string, int) {
	if offset > len(src) {
		offset = len(src)
	}
	start := strings.LastIndexByte(src[:offset], '\n') + 1
	end := strings.IndexByte(src[offset:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += offset
	}
	return src[start:end], offset - start
}
