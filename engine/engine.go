package engine

import (
	"context"
	"time"

	"jsctx/errors"
	"jsctx/logging"
	"jsctx/pkg/disambig"
	"jsctx/pkg/lexer"
	"jsctx/pkg/script"
	"jsctx/pkg/splitter"
	"jsctx/pkg/stream"
	"jsctx/serialization"
)

// Options controls the analysis of one unit
type Options struct {
	// Module selects module code, which is strict from the first token.
	Module bool
	// PredicateScript is Lua source defining extra predicates. PredicateFile
	// is read when PredicateScript is empty.
	PredicateScript string
	PredicateFile   string
}

// AnnotatedToken is a token together with the tokenizer state observed just
// before it was produced.
type AnnotatedToken struct {
	lexer.Token
	RegexPossible bool
	Strict        bool
}

// Result is everything learned about one source unit
type Result struct {
	Name        string
	Module      bool
	Tokens      []AnnotatedToken
	Statements  []splitter.Statement
	Diagnostics []*errors.Error
	// PredicateHits maps a default-channel token index to the Lua predicates
	// that held with that token current.
	PredicateHits map[int][]string
	Duration      time.Duration
}

// RawTokens returns the tokens without annotations
func (r *Result) RawTokens() []lexer.Token {
	out := make([]lexer.Token, len(r.Tokens))
	for i, t := range r.Tokens {
		out[i] = t.Token
	}
	return out
}

// Significant returns the default-channel tokens, EOF excluded
func (r *Result) Significant() []AnnotatedToken {
	var out []AnnotatedToken
	for _, t := range r.Tokens {
		if t.Channel == lexer.ChannelDefault && t.Type != lexer.TokenEOF {
			out = append(out, t)
		}
	}
	return out
}

// HasErrors reports whether any diagnostic is an error rather than a warning
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == errors.SeverityError || d.Severity == errors.SeverityFatal {
			return true
		}
	}
	return false
}

// Snapshot returns the serializable form of the token list
func (r *Result) Snapshot() *serialization.Snapshot {
	return &serialization.Snapshot{Source: r.Name, Tokens: r.RawTokens()}
}

// Analyze runs one unit without logging
func Analyze(ctx context.Context, name, source string, opts Options) (*Result, error) {
	return analyze(ctx, name, source, opts, logging.NewNopLogger())
}

// Analyze runs one unit with the engine's logger
func (e *Engine) Analyze(ctx context.Context, name, source string, opts Options) (*Result, error) {
	return analyze(ctx, name, source, opts, e.logger)
}

// Export serializes the result's token snapshot in the given format
func (e *Engine) Export(r *Result, format string) ([]byte, error) {
	s, err := e.serializers.GetSerializer(format)
	if err != nil {
		return nil, err
	}
	return s.Serialize(r.Snapshot())
}

func analyze(ctx context.Context, name, source string, opts Options, logger logging.Logger) (*Result, error) {
	start := time.Now()
	log := logger.WithFields(logging.StringField("unit", name))
	log.Debug("analysis started", logging.BoolField("module", opts.Module), logging.IntField("bytes", len(source)))

	dctx := disambig.NewContext(opts.Module)
	lx := lexer.NewLexer(source, dctx, lexer.Options{Source: name, Logger: logger})

	result := &Result{Name: name, Module: opts.Module, PredicateHits: map[int][]string{}}
	for {
		if err := ctx.Err(); err != nil {
			log.Warn("analysis cancelled", logging.ErrorField("error", err))
			return nil, err
		}
		annotated := AnnotatedToken{
			RegexPossible: dctx.IsRegexPossible(),
			Strict:        dctx.IsStrict(),
		}
		annotated.Token = lx.NextToken()
		result.Tokens = append(result.Tokens, annotated)
		if annotated.Type == lexer.TokenEOF {
			break
		}
	}
	result.Diagnostics = append(result.Diagnostics, lx.Errors()...)

	s := stream.NewTokenStreamFromTokens(result.RawTokens())
	preds := &replayPredicates{
		Predicates: dctx.Predicates(s),
		window:     s,
		tokens:     result.Tokens,
	}

	if opts.PredicateScript != "" || opts.PredicateFile != "" {
		if err := evalPredicates(ctx, name, s, preds, opts, result, logger); err != nil {
			return nil, err
		}
		s.Seek(0)
	}

	result.Statements = splitter.New(s, preds, splitter.Options{
		Strict: func(i int) bool {
			if i < 0 || i >= len(result.Tokens) {
				return dctx.IsStrict()
			}
			return result.Tokens[i].Strict
		},
		Logger: logger,
	}).Split()

	result.Duration = time.Since(start)
	log.Debug("analysis finished",
		logging.IntField("tokens", len(result.Tokens)),
		logging.IntField("statements", len(result.Statements)),
		logging.IntField("diagnostics", len(result.Diagnostics)),
		logging.DurationField("duration", result.Duration))
	return result, nil
}

// evalPredicates walks the default-channel tokens and records which Lua
// predicates hold at each one. A failing predicate stops the walk and is
// reported as a diagnostic.
func evalPredicates(ctx context.Context, name string, s *stream.SimpleTokenStream, preds disambig.Predicates,
	opts Options, result *Result, logger logging.Logger) error {
	scripts := script.New(s, preds, script.Options{Logger: logger})
	defer scripts.Close()
	scripts.SetContext(ctx)

	var err error
	if opts.PredicateScript != "" {
		err = scripts.Load(name+":predicates", opts.PredicateScript)
	} else {
		err = scripts.LoadFile(opts.PredicateFile)
	}
	if err != nil {
		return err
	}

	for ; ; s.Consume() {
		if err := ctx.Err(); err != nil {
			return err
		}
		hits, err := scripts.EvalAll()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			se, ok := errors.AsError(err)
			if !ok {
				se = errors.NewScriptError(script.CodePredicateFailed, err.Error())
			}
			result.Diagnostics = append(result.Diagnostics, se.WithSource(name).WithPosition(s.LT(1).Line, s.LT(1).Column))
			return nil
		}
		if len(hits) > 0 {
			result.PredicateHits[s.LT(1).Index] = hits
		}
		if !s.HasMore() {
			return nil
		}
	}
}

// replayPredicates answers the tokenizer-state predicates from the values
// recorded for the current token, so they agree with what the tokenizer saw
// when it produced LT(1) rather than with the state at end of input.
type replayPredicates struct {
	disambig.Predicates
	window disambig.TokenWindow
	tokens []AnnotatedToken
}

func (p *replayPredicates) current() (AnnotatedToken, bool) {
	i := p.window.LT(1).Index
	if i < 0 || i >= len(p.tokens) {
		return AnnotatedToken{}, false
	}
	return p.tokens[i], true
}

func (p *replayPredicates) IsStrict() bool {
	if t, ok := p.current(); ok {
		return t.Strict
	}
	return p.Predicates.IsStrict()
}

func (p *replayPredicates) IsRegexPossible() bool {
	if t, ok := p.current(); ok {
		return t.RegexPossible
	}
	return p.Predicates.IsRegexPossible()
}

func (p *replayPredicates) IsStartOfInput() bool {
	return p.window.LT(-1).Index < 0
}
