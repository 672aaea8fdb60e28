package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vintry/contentops-backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	application.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + application.Cfg.Port
	if application.Cfg.RunServer {
		application.Log.Info("Server listening", "addr", addr, "run_worker", application.Cfg.RunWorker)
	} else {
		application.Log.Info("Worker running", "run_server", false)
	}
	if err := application.Run(ctx, addr); err != nil {
		application.Log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
