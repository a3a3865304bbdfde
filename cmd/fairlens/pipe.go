package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/fairlens/fairlens/internal/cache"
	"github.com/fairlens/fairlens/internal/dispatch"
)

func pipeCmd() *cli.Command {
	return &cli.Command{
		Name:  "pipe",
		Usage: "Run the line-delimited request protocol over stdin/stdout",
		Description: `Reads one request per stdin line and writes one JSON response per
stdout line. Requests are JSON objects with a "command" field (TOON
frames are accepted too); responses carry either a "result" or an
"error" key. The loop runs until stdin closes.

Example:
  echo '{"command":"scan_terminology","content":"check the whitelist"}' | fairlens pipe`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable request memoization",
			},
		},
		Action: runPipeCmd,
	}
}

func runPipeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return dispatch.New(cfg, store).Run(ctx, os.Stdin, os.Stdout)
}
