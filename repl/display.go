package repl

import (
	"fmt"
	"io"

	"jsctx/engine"
	"jsctx/pkg/disambig"
	"jsctx/pkg/lexer"
	"jsctx/pkg/stream"
	"jsctx/shared"
)

// DisplayManager manages prompts and result formatting for the REPL
type DisplayManager struct {
	out            io.Writer
	useColors      bool
	prompt         string
	continuePrompt string
}

// NewDisplayManager creates a new display manager
func NewDisplayManager(out io.Writer, useColors bool, prompt, continuePrompt string) *DisplayManager {
	return &DisplayManager{
		out:            out,
		useColors:      useColors,
		prompt:         prompt,
		continuePrompt: continuePrompt,
	}
}

// GetPrompt returns the appropriate prompt based on buffer state
func (dm *DisplayManager) GetPrompt(buffer *MultiLineBuffer) string {
	if buffer.IsActive() {
		return dm.colorize(dm.continuePrompt, "continuation")
	}
	return dm.colorize(dm.prompt, "primary")
}

func (dm *DisplayManager) colorize(text, kind string) string {
	if !dm.useColors {
		return text
	}

	colors := map[string]string{
		"primary":      "\033[36m", // Cyan
		"continuation": "\033[90m", // Dark gray
		"success":      "\033[32m", // Green
		"error":        "\033[31m", // Red
		"warning":      "\033[33m", // Yellow
	}
	color, ok := colors[kind]
	if !ok {
		return text
	}
	return color + text + "\033[0m"
}

// ShowResult prints the token table, optionally the statement outline, and diagnostics
func (dm *DisplayManager) ShowResult(r *engine.Result, showStatements, showHidden bool) {
	if err := shared.FormatTokenTable(dm.out, r, shared.TableOptions{Hidden: showHidden, MaxText: 40}); err != nil {
		dm.ShowError(err)
		return
	}
	if showStatements {
		fmt.Fprintln(dm.out, dm.colorize("statements:", "success"))
		shared.FormatStatements(dm.out, r.Statements)
	}
	if len(r.Diagnostics) > 0 {
		kind := "warning"
		if r.HasErrors() {
			kind = "error"
		}
		fmt.Fprintln(dm.out, dm.colorize("diagnostics:", kind))
		shared.FormatDiagnostics(dm.out, r.Diagnostics)
	}
}

// ShowWindow prints the default-channel tokens within k of the token at
// index, and the line-terminator predicates evaluated there.
func (dm *DisplayManager) ShowWindow(r *engine.Result, index, k int) {
	s := stream.NewTokenStreamFromTokens(r.RawTokens())
	s.Seek(index)
	preds := disambig.NewLookaheadPredicates(s)

	for i := -k; i <= k; i++ {
		if i == 0 {
			continue
		}
		tok := s.LT(i)
		if tok.Index < 0 {
			continue
		}
		marker := "  "
		if i == 1 {
			marker = "=>"
		}
		fmt.Fprintf(dm.out, "%s LT(%d) #%d %s %q\n", marker, i, tok.Index, tok.Type, tok.Text)
		if i > 0 && tok.Type == lexer.TokenEOF {
			break
		}
	}
	fmt.Fprintf(dm.out, "line terminator ahead: %v\n", preds.LineTerminatorAhead())
	fmt.Fprintf(dm.out, "no line terminator immediately before: %v\n", preds.NoLineTerminatorImmediatelyBefore())
	fmt.Fprintf(dm.out, "next is close brace: %v\n", preds.NextIsCloseBrace())
}

// ShowError prints an error
func (dm *DisplayManager) ShowError(err error) {
	fmt.Fprintln(dm.out, dm.colorize("error: "+err.Error(), "error"))
}

// ShowInfo prints a status line
func (dm *DisplayManager) ShowInfo(format string, args ...interface{}) {
	fmt.Fprintln(dm.out, dm.colorize(fmt.Sprintf(format, args...), "success"))
}

// ShowHelp lists the commands
func (dm *DisplayManager) ShowHelp() {
	fmt.Fprintln(dm.out, "Each line is tokenized as its own unit. End a line with \\ to continue it.")
	fmt.Fprintln(dm.out)
	for _, c := range commands {
		fmt.Fprintf(dm.out, "  %-14s %s\n", c.usage, c.help)
	}
}
