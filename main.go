package main

import (
	"cardadvisor/app/client/advisor"
	"cardadvisor/app/config"
	"cardadvisor/app/server"
	"cardadvisor/app/service/session"
	"cardadvisor/app/util/mylog"
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, advisor.NewClient)
	do.Provide(di, session.New)
	do.Provide(di, server.New)

	slog.Info("Service started", "addr", cfg.Server.Addr)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*server.Server](di).Run(appCtx)

	<-appCtx.Done()
}
