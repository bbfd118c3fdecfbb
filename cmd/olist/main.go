package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"olist/internal/config"
	"olist/internal/export"
	"olist/internal/logger"
	"olist/internal/olist"
	"olist/internal/order"
	"olist/internal/server"
)

const usage = `Usage: olist [global flags] <command> [flags]

Commands:
  features   compose the training table and write outputs (default)
  tables     list loaded tables
  ping       print pong
  serve      serve /ping and /v1 over HTTP

Global flags:
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "olist: %v\n", err)
		}
		os.Exit(1)
	}
}

type globals struct {
	configPath string
	dataDir    string
	logLevel   string
	logFormat  string
}

func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	var g globals
	fs := flag.NewFlagSet("olist", flag.ContinueOnError)
	fs.SetOutput(errW)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&g.configPath, "config", "", "YAML config file; relative paths inside it are resolved against its directory")
	fs.StringVar(&g.dataDir, "data", "", "Directory of olist CSV files (overrides data_dir)")
	fs.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&g.logFormat, "log-format", "", "console or json")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	cmd, rest := "features", fs.Args()
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}
	if cmd == "ping" {
		olist.Ping(outW)
		return nil
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format, errW)
	defer log.Sync()

	switch cmd {
	case "features":
		return runFeatures(ctx, outW, errW, cfg, log, rest)
	case "tables":
		return runTables(outW, cfg, log)
	case "serve":
		return runServe(ctx, errW, cfg, log, rest)
	}
	fmt.Fprintf(errW, "unknown command %q\n", cmd)
	fs.Usage()
	return errUsage
}

func loadConfig(g globals) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.dataDir != "" {
		// flag paths are taken as the caller wrote them
		abs, err := filepath.Abs(g.dataDir)
		if err != nil {
			return nil, err
		}
		cfg.DataDir = abs
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadData(cfg *config.Config, log *zap.Logger) (olist.Dataset, error) {
	data, err := olist.Load(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	log.Info("dataset loaded", zap.String("dir", cfg.DataDir), zap.Strings("tables", data.Names()))
	return data, nil
}

func runFeatures(ctx context.Context, outW, errW io.Writer, cfg *config.Config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("features", flag.ContinueOnError)
	fs.SetOutput(errW)
	status := fs.String("status", cfg.Status, "Keep orders in this status (\"*\" keeps all)")
	withDistance := fs.Bool("with-distance", cfg.WithDistance, "Add mean seller-customer distance")
	csvPath := fs.String("csv", cfg.Output.CSV, "CSV output path")
	sqlitePath := fs.String("sqlite", cfg.Output.SQLite, "SQLite output path")
	table := fs.String("table", cfg.Output.Table, "SQLite table name")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	data, err := loadData(cfg, log)
	if err != nil {
		return err
	}
	set, err := order.New(data, cfg.OrderOptions(), log).TrainingData(ctx, order.TrainingOptions{
		Status:       *status,
		WithDistance: *withDistance,
	})
	if err != nil {
		return err
	}

	if *csvPath != "" {
		if err := export.WriteCSV(*csvPath, set.Frame); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if *sqlitePath != "" {
		if *table == "" {
			return fmt.Errorf("-table is required with -sqlite")
		}
		if err := export.WriteSQLite(ctx, *sqlitePath, *table, set.RunID, set.Frame); err != nil {
			return fmt.Errorf("write sqlite: %w", err)
		}
	}

	fmt.Fprintf(outW, "Run:     %s\n", set.RunID)
	fmt.Fprintf(outW, "Rows:    %d\n", set.Frame.Nrow())
	fmt.Fprintf(outW, "Columns: %d\n", set.Frame.Ncol())
	if *csvPath != "" {
		fmt.Fprintf(outW, "CSV:     %s\n", *csvPath)
	}
	if *sqlitePath != "" {
		fmt.Fprintf(outW, "SQLite:  %s (%s)\n", *sqlitePath, *table)
	}
	return nil
}

func runTables(outW io.Writer, cfg *config.Config, log *zap.Logger) error {
	data, err := loadData(cfg, log)
	if err != nil {
		return err
	}
	for _, name := range data.Names() {
		df := data[name]
		fmt.Fprintf(outW, "%-24s %8d rows %3d cols\n", name, df.Nrow(), df.Ncol())
	}
	return nil
}

func runServe(ctx context.Context, errW io.Writer, cfg *config.Config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(errW)
	addr := fs.String("addr", cfg.Server.Addr, "Listen address")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	data, err := loadData(cfg, log)
	if err != nil {
		return err
	}
	return server.New(data, cfg.OrderOptions(), cfg.Status, log).Run(ctx, *addr)
}
