// Package shared holds the text rendering used by both the CLI and the REPL,
// so a unit prints the same way whichever front end analyzed it.
package shared

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"jsctx/engine"
	"jsctx/errors"
	"jsctx/pkg/lexer"
	"jsctx/pkg/splitter"
)

// TableOptions selects what FormatTokenTable prints
type TableOptions struct {
	// Hidden includes whitespace, line terminators and comments
	Hidden bool
	// MaxText truncates long token text; 0 means no limit
	MaxText int
}

// FormatTokenTable writes one row per token with the tokenizer state seen
// before it and any Lua predicates that held there.
func FormatTokenTable(w io.Writer, r *engine.Result, opts TableOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IDX\tPOS\tCHANNEL\tKIND\tTEXT\tREGEX\tSTRICT\tPREDICATES")

	for _, tok := range r.Tokens {
		if tok.Channel == lexer.ChannelHidden && !opts.Hidden {
			continue
		}
		fmt.Fprintf(tw, "%d\t%d:%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tok.Index,
			tok.Line, tok.Column,
			tok.Channel,
			tok.Type,
			FormatTokenText(tok.Text, opts.MaxText),
			yesNo(tok.RegexPossible),
			yesNo(tok.Strict),
			strings.Join(r.PredicateHits[tok.Index], ","))
	}
	return tw.Flush()
}

// FormatStatements writes the statement outline, indenting block children
func FormatStatements(w io.Writer, statements []splitter.Statement) {
	formatStatements(w, statements, 0)
}

func formatStatements(w io.Writer, statements []splitter.Statement, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, st := range statements {
		strict := ""
		if st.Strict {
			strict = " strict"
		}
		fmt.Fprintf(w, "%s%d:%d-%d:%d %s ends by %s%s  %s\n",
			indent,
			st.First.Line, st.First.Column,
			st.Last.Line, st.Last.Column,
			st.Kind, st.Reason, strict,
			FormatTokenText(st.First.Text, 20))
		formatStatements(w, st.Children, depth+1)
	}
}

// FormatDiagnostics writes one line per diagnostic
func FormatDiagnostics(w io.Writer, diagnostics []*errors.Error) {
	for _, d := range diagnostics {
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			d.Source, d.Line, d.Col, strings.ToLower(string(d.Severity)), d.Code, d.Message)
	}
}

// FormatSummary is the one-line report printed per unit in batch runs
func FormatSummary(r *engine.Result) string {
	warnings, errs := 0, 0
	for _, d := range r.Diagnostics {
		if d.Severity == errors.SeverityWarning {
			warnings++
		} else {
			errs++
		}
	}
	mode := "script"
	if r.Module {
		mode = "module"
	}
	return fmt.Sprintf("%s: %s, %d tokens, %d statements, %d errors, %d warnings (%s)",
		r.Name, mode, len(r.Tokens), len(r.Statements), errs, warnings, r.Duration.Round(time.Microsecond))
}

// FormatTokenText quotes token text so hidden characters stay visible
func FormatTokenText(text string, max int) string {
	if max > 0 && len([]rune(text)) > max {
		text = string([]rune(text)[:max]) + "..."
	}
	quoted := strconv.Quote(text)
	return quoted[1 : len(quoted)-1]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
