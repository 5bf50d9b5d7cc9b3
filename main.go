package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"jsctx/logging"
	"jsctx/repl"
	"jsctx/serialization"
)

const version = "v0.1.0"

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		execFile    = flag.String("exec", "", "Analyze file in batch mode (more files may follow as arguments)")
		module      = flag.Bool("module", false, "Treat sources as module code (strict from the start)")
		predicates  = flag.String("predicates", "", "Lua file defining extra predicates")
		dump        = flag.String("dump", "", "Write token snapshots to this path")
		format      = flag.String("format", "", "Snapshot format for -dump (funbit, json)")
		hexDump     = flag.Bool("hex", false, "Print a hex dump of each unit's binary snapshot")
		statements  = flag.Bool("statements", false, "Print the statement outline")
		tokens      = flag.Bool("tokens", false, "Print the annotated token table")
		workers     = flag.Int("workers", 0, "Number of files analyzed concurrently")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("jsctx %s - JavaScript tokenizer disambiguation inspector\n", version)
		if *verbose {
			fmt.Printf("Go Version: %s\n", runtime.Version())
			fmt.Printf("Snapshot formats: %v\n", serialization.GetSupportedFormats())
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := LoadConfig(findConfig(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Command line flags override the file
	if *module {
		cfg.Parser.SourceType = SourceTypeModule
	}
	if *predicates != "" {
		cfg.Predicates.Script = *predicates
	}
	if *format != "" {
		cfg.Serialization.Format = *format
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	files := flag.Args()
	if *execFile != "" {
		files = append([]string{*execFile}, files...)
	}

	if len(files) > 0 {
		err := BatchMode(ctx, cfg, BatchOptions{
			Files:      files,
			Dump:       *dump,
			Hex:        *hexDump,
			Statements: *statements,
			Tokens:     *tokens,
		}, logger, os.Stdout)
		if err != nil {
			logger.LogError(err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			stop()
			logger.Close()
			os.Exit(1)
		}
		return
	}

	r, err := repl.NewREPLWithConfig(repl.REPLConfig{
		Logger:         logger,
		Module:         cfg.DefaultStrict(),
		PredicateFile:  cfg.PredicateScript(),
		Format:         cfg.Serialization.Format,
		MaxLookahead:   cfg.Parser.MaxLookahead,
		Prompt:         cfg.REPL.Prompt,
		ContinuePrompt: "... ",
		HistoryFile:    expandHome(cfg.REPL.HistoryFile),
		HistorySize:    cfg.REPL.HistorySize,
		EnableColors:   cfg.REPL.Colors,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := r.Run(ctx); err != nil && ctx.Err() == nil {
		logger.LogError(err, logging.StringField("mode", "repl"))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// findConfig returns path, or the first default location that exists
func findConfig(path string) string {
	if path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	for _, candidate := range []string{
		filepath.Join(home, ".jsctx", "config.yaml"),
		"./jsctx.yaml",
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// printHelp displays help information
func printHelp() {
	fmt.Println("jsctx - JavaScript tokenizer disambiguation inspector")
	fmt.Println()
	fmt.Println("Usage: jsctx [options] [file.js ...]")
	fmt.Println("With no files, starts the interactive token inspector.")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
}
