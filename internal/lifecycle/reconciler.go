// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package lifecycle

import (
	"context"

	"github.com/AMD-AGI/kube-benchscan/internal/obslog"
	"github.com/AMD-AGI/kube-benchscan/internal/supervisor"
)

// ReconcileOnStartup re-attaches a supervisor to every (cluster_id,
// main_task_id) pair that still has non-terminal node-tasks, per SPEC_FULL
// §2 item 9. Run once at process start and re-invoked on a cron schedule
// as a safety net against a crash that drops live supervisors without a
// process restart, grounded on the cron-tick reconciliation shape of
// Lens/modules/jobs/pkg/jobs/dataplane_installer/job.go.
func (c *Controller) ReconcileOnStartup(ctx context.Context) {
	refs, err := c.store.ListNonTerminalMainTasks(ctx)
	if err != nil {
		obslog.WithFields(obslog.Fields{"error": err.Error()}).Warn("reconciler sweep failed to list non-terminal main-tasks")
		return
	}

	for _, ref := range refs {
		if c.registry.Active(ref.ClusterID, ref.MainTaskID) {
			continue
		}

		cluster, err := c.store.GetCluster(ctx, ref.ClusterID)
		if err != nil {
			obslog.WithFields(obslog.Fields{
				"cluster_id":   ref.ClusterID,
				"main_task_id": ref.MainTaskID,
				"error":        err.Error(),
			}).Warn("reconciler sweep could not resolve cluster, skipping")
			continue
		}

		adapter, err := c.factory.Build(cluster)
		if err != nil {
			obslog.WithFields(obslog.Fields{
				"cluster_id":   ref.ClusterID,
				"main_task_id": ref.MainTaskID,
				"error":        err.Error(),
			}).Warn("reconciler sweep could not build cluster adapter, skipping")
			continue
		}

		sup := supervisor.New(c.store, adapter, ref.ClusterID, ref.MainTaskID, c.tickInterval, c.pendingTimeout)
		c.registry.Start(c.runCtx, ref.ClusterID, ref.MainTaskID, sup)

		obslog.WithFields(obslog.Fields{
			"cluster_id":   ref.ClusterID,
			"main_task_id": ref.MainTaskID,
		}).Info("reconciler sweep re-attached supervisor")
	}
}
