package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yungbote/aquasync-backend/internal/app"
	"github.com/yungbote/aquasync-backend/internal/observability"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	shutdownOtel := observability.InitOTel(context.Background(), a.Log, observability.OtelConfig{
		ServiceName: "aquasync-backend",
		Environment: os.Getenv("APP_ENV"),
		Version:     os.Getenv("APP_VERSION"),
	})
	if shutdownOtel != nil {
		defer func() { _ = shutdownOtel(context.Background()) }()
	}

	a.Start()

	if a.Cfg.RunServer {
		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			a.Log.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := a.Shutdown(ctx); err != nil {
				a.Log.Warn("shutdown did not drain cleanly", "error", err)
			}
		}()

		addr := ":" + a.Cfg.Port
		a.Log.Info("API listening", "addr", addr)
		if err := a.Run(addr); err != nil {
			a.Log.Error("server exited", "error", err)
		}
		return
	}

	// Worker-only process: nothing serves HTTP, so block until termination.
	a.Log.Info("worker running")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	a.Log.Info("shutting down")
}
