package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jsctx/engine"
	"jsctx/errors"
	"jsctx/logging"
	"jsctx/serialization"
	"jsctx/shared"
)

// BatchOptions are the command line switches that shape a batch run
type BatchOptions struct {
	Files      []string
	Dump       string // snapshot path; a directory when several files are given
	Hex        bool
	Statements bool
	Tokens     bool
}

// BatchMode analyzes files without the interactive REPL. It fails when a
// file cannot be read or analyzed, or when any unit has error diagnostics.
func BatchMode(ctx context.Context, cfg *Config, opts BatchOptions, logger logging.Logger, out io.Writer) error {
	eng, err := engine.NewEngineWithConfig(engine.Config{
		Logger:  logger,
		Workers: cfg.Batch.Workers,
	})
	if err != nil {
		return err
	}
	defer eng.Shutdown()

	units := make([]engine.Unit, 0, len(opts.Files))
	for _, path := range opts.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.NewUserError("READ_FAILED", "cannot read source file").WithSource(path).Wrap(err)
		}
		units = append(units, engine.Unit{Name: path, Source: string(data)})
	}

	results := eng.AnalyzeAll(ctx, units, engine.Options{
		Module:        cfg.DefaultStrict(),
		PredicateFile: cfg.PredicateScript(),
	})

	failed := 0
	for _, br := range results {
		if br.Err != nil {
			failed++
			fmt.Fprintf(out, "%s: %v\n", br.Name, br.Err)
			continue
		}
		r := br.Result
		if r.HasErrors() {
			failed++
		}

		fmt.Fprintln(out, shared.FormatSummary(r))
		shared.FormatDiagnostics(out, r.Diagnostics)
		if opts.Tokens {
			if err := shared.FormatTokenTable(out, r, shared.TableOptions{}); err != nil {
				return err
			}
		}
		if opts.Statements {
			shared.FormatStatements(out, r.Statements)
		}
		if opts.Hex {
			data, err := eng.Export(r, serialization.FormatFunbit)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, serialization.HexDump(data))
		}
		if opts.Dump != "" {
			path := dumpPath(opts.Dump, r.Name, cfg.Serialization.Format, len(results) > 1)
			if err := writeSnapshot(eng, r, cfg.Serialization.Format, path); err != nil {
				return err
			}
			logger.Info("snapshot written", logging.StringField("unit", r.Name), logging.StringField("path", path))
		}
	}

	if failed > 0 {
		return errors.NewUserError("ANALYSIS_FAILED", fmt.Sprintf("%d of %d units failed", failed, len(results)))
	}
	return nil
}

// dumpPath places one snapshot per unit inside dir when several units are dumped
func dumpPath(dump, unit, format string, many bool) string {
	if !many {
		return dump
	}
	base := strings.TrimSuffix(filepath.Base(unit), filepath.Ext(unit))
	return filepath.Join(dump, base+"."+format)
}

func writeSnapshot(eng *engine.Engine, r *engine.Result, format, path string) error {
	data, err := eng.Export(r, format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewSystemError("DUMP_FAILED", "cannot create snapshot directory").WithSource(dir).Wrap(err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewSystemError("DUMP_FAILED", "cannot write snapshot").WithSource(path).Wrap(err)
	}
	return nil
}
