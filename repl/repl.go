// Package repl is an interactive token inspector: each entered unit is run
// through the analysis engine and printed as an annotated token table.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"jsctx/engine"
	"jsctx/errors"
	"jsctx/logging"
	"jsctx/serialization"

	"github.com/chzyer/readline"
)

type command struct {
	name  string
	usage string
	help  string
}

var commands = []command{
	{":help", ":help", "show this help"},
	{":module", ":module", "analyze following units as module code"},
	{":script", ":script", "analyze following units as script code"},
	{":statements", ":statements", "toggle the statement outline"},
	{":hidden", ":hidden", "toggle hidden-channel tokens in the table"},
	{":window", ":window N", "show the lookahead window around token N"},
	{":load", ":load FILE", "analyze a file"},
	{":dump", ":dump [FILE]", "write the last unit's snapshot, or hex dump it"},
	{":reset", ":reset", "discard continued lines"},
	{":log", ":log [LEVEL]", "show or set the log level (debug, info, warn, error)"},
	{":exit", ":exit", "leave the REPL"},
}

// REPLConfig contains configuration for the REPL
type REPLConfig struct {
	Engine         *engine.Engine
	Logger         logging.Logger
	Module         bool
	PredicateFile  string
	Format         string // snapshot format for :dump
	MaxLookahead   int
	Prompt         string
	ContinuePrompt string
	HistoryFile    string
	HistorySize    int
	EnableColors   bool
	Output         io.Writer
}

// REPL represents the Read-Eval-Print Loop
type REPL struct {
	engine         *engine.Engine
	logger         logging.Logger
	display        *DisplayManager
	buffer         *MultiLineBuffer
	module         bool
	showStatements bool
	showHidden     bool
	predicateFile  string
	format         string
	maxLookahead   int
	prompt         string
	historyFile    string
	historySize    int
	units          int
	last           *engine.Result
	out            io.Writer
}

// NewREPLWithConfig creates a new REPL instance with configuration
func NewREPLWithConfig(config REPLConfig) (*REPL, error) {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	eng := config.Engine
	if eng == nil {
		var err error
		if eng, err = engine.NewEngineWithConfig(engine.Config{Logger: logger}); err != nil {
			return nil, err
		}
	}
	out := config.Output
	if out == nil {
		out = os.Stdout
	}
	if config.Prompt == "" {
		config.Prompt = "js> "
	}
	if config.ContinuePrompt == "" {
		config.ContinuePrompt = "... "
	}
	if config.Format == "" {
		config.Format = serialization.FormatFunbit
	}
	if config.MaxLookahead <= 0 {
		config.MaxLookahead = 8
	}
	if config.HistorySize <= 0 {
		config.HistorySize = 1000
	}

	return &REPL{
		engine:        eng,
		logger:        logger.WithComponent("repl"),
		display:       NewDisplayManager(out, config.EnableColors, config.Prompt, config.ContinuePrompt),
		buffer:        NewMultiLineBuffer(),
		module:        config.Module,
		predicateFile: config.PredicateFile,
		format:        config.Format,
		maxLookahead:  config.MaxLookahead,
		prompt:        config.Prompt,
		historyFile:   config.HistoryFile,
		historySize:   config.HistorySize,
		out:           out,
	}, nil
}

// isInteractive checks if the input is interactive (terminal) or piped
func isInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Run starts the REPL loop on stdin
func (r *REPL) Run(ctx context.Context) error {
	if isInteractive() {
		return r.runInteractive(ctx)
	}
	return r.RunReader(ctx, os.Stdin)
}

func (r *REPL) runInteractive(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.prompt,
		HistoryFile:     r.historyFile,
		HistoryLimit:    r.historySize,
		InterruptPrompt: "^C",
		EOFPrompt:       ":exit",
		AutoComplete:    newCommandCompleter(),
	})
	if err != nil {
		return errors.NewSystemError("READLINE_INIT_FAILED", "failed to initialize readline").Wrap(err)
	}
	defer rl.Close()

	fmt.Fprintln(r.out, "jsctx token inspector. :help lists commands.")

	for ctx.Err() == nil {
		rl.SetPrompt(r.display.GetPrompt(r.buffer))

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 && !r.buffer.IsActive() {
				return nil
			}
			r.buffer.Clear()
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.NewSystemError("READ_ERROR", "read error").Wrap(err)
		}

		if !r.HandleLine(ctx, line) {
			return nil
		}
	}
	return ctx.Err()
}

// RunReader processes lines from in until EOF or :exit
func (r *REPL) RunReader(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.HandleLine(ctx, scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.NewSystemError("READ_ERROR", "read error").Wrap(err)
	}
	if r.buffer.IsActive() {
		r.analyze(ctx, r.buffer.GetContent())
		r.buffer.Clear()
	}
	return nil
}

// HandleLine processes one input line. It returns false when the user asked to leave.
func (r *REPL) HandleLine(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, ":") && !r.buffer.IsActive() {
		return r.handleCommand(ctx, trimmed)
	}

	if isContinuation(line) {
		r.buffer.AddLine(strings.TrimSuffix(strings.TrimRight(line, " \t\r"), "\\"))
		return true
	}

	source := line
	if r.buffer.IsActive() {
		r.buffer.AddLine(line)
		source = r.buffer.GetContent()
		r.buffer.Clear()
	}
	if strings.TrimSpace(source) == "" {
		return true
	}

	r.analyze(ctx, source)
	return true
}

func (r *REPL) analyze(ctx context.Context, source string) {
	r.units++
	name := fmt.Sprintf("<repl:%d>", r.units)
	r.analyzeUnit(ctx, name, source)
}

func (r *REPL) analyzeUnit(ctx context.Context, name, source string) {
	result, err := r.engine.Analyze(ctx, name, source, engine.Options{
		Module:        r.module,
		PredicateFile: r.predicateFile,
	})
	if err != nil {
		r.logger.LogError(err)
		r.display.ShowError(err)
		return
	}
	r.last = result
	r.display.ShowResult(result, r.showStatements, r.showHidden)
}

func (r *REPL) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case ":exit", ":quit", ":q":
		return false
	case ":help", ":h":
		r.display.ShowHelp()
	case ":module":
		r.module = true
		r.display.ShowInfo("source type: module")
	case ":script":
		r.module = false
		r.display.ShowInfo("source type: script")
	case ":statements":
		r.showStatements = !r.showStatements
		r.display.ShowInfo("statement outline: %v", r.showStatements)
	case ":hidden":
		r.showHidden = !r.showHidden
		r.display.ShowInfo("hidden tokens: %v", r.showHidden)
	case ":reset":
		r.buffer.Clear()
	case ":log":
		r.logLevel(args)
	case ":window":
		r.window(args)
	case ":load":
		if len(args) != 1 {
			r.display.ShowError(errors.NewUserError("USAGE", "usage: :load FILE"))
			break
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			r.display.ShowError(errors.NewUserError("LOAD_FAILED", "cannot read file").WithSource(args[0]).Wrap(err))
			break
		}
		r.analyzeUnit(ctx, args[0], string(data))
	case ":dump":
		r.dump(args)
	default:
		r.display.ShowError(errors.NewUserError("UNKNOWN_COMMAND", fmt.Sprintf("unknown command %s, try :help", name)))
	}
	return true
}

// logLevel changes the level shared by every logger derived from the REPL's
func (r *REPL) logLevel(args []string) {
	if len(args) > 0 {
		level, ok := logging.LookupLevel(args[0])
		if !ok {
			r.display.ShowError(errors.NewUserError("USAGE", "unknown log level "+args[0]))
			return
		}
		r.logger.SetLevel(level)
	}
	r.display.ShowInfo("log level: %s", r.logger.GetLevel())
}

func (r *REPL) window(args []string) {
	if r.last == nil {
		r.display.ShowError(errors.NewUserError("NO_UNIT", "nothing analyzed yet"))
		return
	}
	index := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n >= len(r.last.Tokens) {
			r.display.ShowError(errors.NewUserError("USAGE",
				fmt.Sprintf("token index must be between 0 and %d", len(r.last.Tokens)-1)))
			return
		}
		index = n
	}
	r.display.ShowWindow(r.last, index, r.maxLookahead)
}

func (r *REPL) dump(args []string) {
	if r.last == nil {
		r.display.ShowError(errors.NewUserError("NO_UNIT", "nothing analyzed yet"))
		return
	}

	if len(args) == 0 {
		data, err := r.engine.Export(r.last, serialization.FormatFunbit)
		if err != nil {
			r.display.ShowError(err)
			return
		}
		fmt.Fprintln(r.out, serialization.HexDump(data))
		return
	}

	data, err := r.engine.Export(r.last, r.format)
	if err != nil {
		r.display.ShowError(err)
		return
	}
	if err := os.WriteFile(args[0], data, 0644); err != nil {
		r.display.ShowError(errors.NewSystemError("DUMP_FAILED", "cannot write snapshot").WithSource(args[0]).Wrap(err))
		return
	}
	r.display.ShowInfo("wrote %d bytes (%s) to %s", len(data), r.format, args[0])
}
