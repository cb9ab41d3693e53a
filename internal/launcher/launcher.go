// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package launcher turns a Planner's per-node plans into running workloads
// and persisted node-task rows, per spec.md §4.5.
package launcher

import (
	"context"
	"time"

	"github.com/AMD-AGI/kube-benchscan/internal/apperrors"
	"github.com/AMD-AGI/kube-benchscan/internal/clusteraccess"
	"github.com/AMD-AGI/kube-benchscan/internal/model"
	"github.com/AMD-AGI/kube-benchscan/internal/obslog"
	"github.com/AMD-AGI/kube-benchscan/internal/planner"
	"github.com/AMD-AGI/kube-benchscan/internal/store"
	"github.com/AMD-AGI/kube-benchscan/internal/workload"
)

// Launcher creates one workload per plan, waits for its managed pod to
// materialize, and persists a node-task record. A per-plan failure (Job
// create error, or the pod never appearing within the poll bound) is
// logged and skipped, never aborting the rest of the batch, grounded on
// the waitForPodReady retry shape of
// Lens/modules/api/pkg/api/tracelens/pod_manager.go.
type Launcher struct {
	store        store.Store
	podWaitCount int
	podWaitEvery time.Duration
}

func New(st store.Store, podWaitCount int, podWaitEvery time.Duration) *Launcher {
	return &Launcher{store: st, podWaitCount: podWaitCount, podWaitEvery: podWaitEvery}
}

// Launch creates a workload for every plan against adapter, waits for its
// pod to materialize, and inserts a node-task row (status=pending) for
// each plan that made it through both steps. If zero plans succeeded, it
// returns an apperrors.PlanEmpty error; a partial success is not an error.
func (l *Launcher) Launch(ctx context.Context, adapter clusteraccess.Adapter, cluster *model.Cluster, mainTaskID, image string, plans []planner.Plan) ([]string, error) {
	launched := make([]string, 0, len(plans))

	for _, p := range plans {
		if !l.launchOne(ctx, adapter, cluster, mainTaskID, image, p) {
			continue
		}
		launched = append(launched, p.NodeTaskID)
	}

	if len(launched) == 0 {
		return nil, apperrors.NewError().
			WithCode(apperrors.PlanEmpty).
			WithMessagef("no node-task launched for main-task %s", mainTaskID)
	}
	return launched, nil
}

// launchOne runs the create-workload/wait-for-pod/persist sequence for a
// single plan, returning false (and logging) on any failure.
func (l *Launcher) launchOne(ctx context.Context, adapter clusteraccess.Adapter, cluster *model.Cluster, mainTaskID, image string, p planner.Plan) bool {
	logFields := obslog.Fields{
		"cluster_id":   cluster.ClusterID,
		"main_task_id": mainTaskID,
		"node":         p.NodeName,
		"node_task_id": p.NodeTaskID,
	}

	manifest := workload.Manifest(p.NodeName, p.WorkloadName, image)
	if _, err := adapter.CreateWorkload(ctx, manifest); err != nil {
		obslog.WithFields(logFields).WithField("error", err.Error()).Warn("failed to create scan workload, skipping node")
		return false
	}

	podName, ok := l.waitForPod(ctx, adapter, p.WorkloadName)
	if !ok {
		obslog.WithFields(logFields).Warn("pod did not materialize for workload, skipping node")
		_ = adapter.DeleteWorkload(ctx, p.WorkloadName)
		return false
	}

	row := &model.NodeTask{
		ClusterID:     cluster.ClusterID,
		ClusterName:   cluster.ClusterName,
		MainTaskID:    mainTaskID,
		NodeTaskID:    p.NodeTaskID,
		NodeName:      p.NodeName,
		NodeIP:        p.NodeIP,
		NodeRole:      p.NodeRole,
		Scanner:       podName,
		WorkloadName:  p.WorkloadName,
		ScanStatus:    model.ScanStatusPending,
		TaskCreatedAt: time.Now(),
	}
	if err := l.store.InsertNodeTask(ctx, row); err != nil {
		obslog.WithFields(logFields).WithField("error", err.Error()).Warn("failed to persist node-task after launching workload")
		_ = adapter.DeleteWorkload(ctx, p.WorkloadName)
		return false
	}

	return true
}

// waitForPod polls FindPodForWorkload up to podWaitCount times, spaced
// podWaitEvery apart, returning the pod name as soon as one appears.
func (l *Launcher) waitForPod(ctx context.Context, adapter clusteraccess.Adapter, workloadName string) (string, bool) {
	for attempt := 0; attempt < l.podWaitCount; attempt++ {
		podName, err := adapter.FindPodForWorkload(ctx, workloadName)
		if err == nil && podName != "" {
			return podName, true
		}
		if attempt < l.podWaitCount-1 {
			select {
			case <-ctx.Done():
				return "", false
			case <-time.After(l.podWaitEvery):
			}
		}
	}
	return "", false
}
