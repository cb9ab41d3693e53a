// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/AMD-AGI/kube-benchscan/internal/clusteraccess"
	"github.com/AMD-AGI/kube-benchscan/internal/config"
	"github.com/AMD-AGI/kube-benchscan/internal/httpapi"
	"github.com/AMD-AGI/kube-benchscan/internal/launcher"
	"github.com/AMD-AGI/kube-benchscan/internal/lifecycle"
	"github.com/AMD-AGI/kube-benchscan/internal/obslog"
	"github.com/AMD-AGI/kube-benchscan/internal/planner"
	"github.com/AMD-AGI/kube-benchscan/internal/store"
)

func main() {
	if err := run(); err != nil {
		obslog.Errorf("benchscan-server exited: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	factory := clusteraccess.NewFactory(cfg.Scan.TLSInsecureSkipVerify)
	pl := planner.New(factory)
	lc := launcher.New(st, cfg.Scan.PodWaitAttemptCount(), cfg.Scan.PodWaitInterval())

	controller := lifecycle.New(
		ctx,
		st,
		factory,
		pl,
		lc,
		cfg.Scan.GetDefaultBenchmarkImage(),
		cfg.Scan.TickInterval(),
		cfg.Scan.PendingTimeout(),
		cfg.Scan.SupervisorJoinTimeoutDuration(),
	)

	controller.ReconcileOnStartup(ctx)

	c := cron.New()
	if _, err := c.AddFunc(cfg.Scan.GetReconcileSchedule(), func() {
		controller.ReconcileOnStartup(ctx)
	}); err != nil {
		return fmt.Errorf("schedule reconciler sweep: %w", err)
	}
	c.Start()
	defer c.Stop()

	router := httpapi.NewRouter(controller)
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	obslog.Infof("benchscan-server listening on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			obslog.Errorf("http server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	obslog.Info("shutdown signal received")
	return nil
}
