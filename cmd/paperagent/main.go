package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"klinebot/internal/app"
	"klinebot/internal/config"
	"klinebot/internal/logger"
)

func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain returns the exit code so deferred cleanup runs on every path.
func runMain(args []string) int {
	fs := flag.NewFlagSet("paperagent", flag.ContinueOnError)
	cfgPath := fs.String("config", os.Getenv("KLINEBOT_CONFIG"), "path to config yaml")
	once := fs.Bool("once", false, "run a single decision cycle and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Printf("load config: %v", err)
		return 1
	}
	logFile, err := app.SetupLogging(cfg.App)
	if err != nil {
		log.Printf("setup logging: %v", err)
		return 1
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.Infof("config loaded (env=%s, symbols=%v)", cfg.App.Env, cfg.Paper.Symbols)

	a, err := app.NewApp(cfg, *cfgPath)
	if err != nil {
		logger.Errorf("init app: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		err = a.RunOnce(ctx)
	} else {
		err = a.Run(ctx)
	}
	if err != nil {
		logger.Errorf("paperagent: %v", err)
		return 1
	}
	return 0
}
