package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ContentCurator/internal/app"
	"ContentCurator/internal/config"
	"ContentCurator/internal/logging"
)

const usage = `usage: contentcurator <command> [-topic id] [-category name]

commands:
  run        run the pipeline once and print the run report
  serve      start the HTTP API and the cron scheduler
  weekly     store a weekly trend summary
  reprocess  queue analyzed items for another pass
  compare    compare recent items with the current tool of -category
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := "run"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	topicID := fs.String("topic", "", "topic id (default: the configured default topic)")
	category := fs.String("category", "", "stack category for compare, e.g. terminal")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(args)

	cfg := config.Load()
	logger := logging.New(cfg.Logging)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := execute(ctx, application, cmd, *topicID, *category); err != nil {
		logger.Error("application stopped", "command", cmd, "error", err)
		application.Close()
		os.Exit(1)
	}
}

func execute(ctx context.Context, application *app.Application, cmd, topicID, category string) error {
	switch cmd {
	case "run":
		res := application.Run(ctx, topicID)
		if err := printJSON(res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("run %s finished with %d errors", res.RunID, len(res.Errors))
		}
		return nil
	case "serve":
		return application.Serve(ctx)
	case "weekly":
		out, err := application.WeeklySummary(ctx, topicID)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "reprocess":
		n, err := application.Reprocess(ctx, topicID)
		if err != nil {
			return err
		}
		return printJSON(map[string]int{"reset": n})
	case "compare":
		out, err := application.CompareStack(ctx, topicID, category)
		if err != nil {
			return err
		}
		return printJSON(out)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
