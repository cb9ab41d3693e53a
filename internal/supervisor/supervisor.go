// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package supervisor owns the per-main-task advancement of node-tasks to a
// terminal state, per spec.md §4.6. Grounded on the poll-advance-update
// reconciliation shape of
// Lens/modules/jobs/pkg/jobs/dataplane_installer/job.go.
package supervisor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AMD-AGI/kube-benchscan/internal/clusteraccess"
	"github.com/AMD-AGI/kube-benchscan/internal/model"
	"github.com/AMD-AGI/kube-benchscan/internal/obslog"
	"github.com/AMD-AGI/kube-benchscan/internal/store"
)

// tickStats is the per-tick bookkeeping the supervisor logs at the end of
// every iteration, grounded on
// Lens/modules/jobs/pkg/common/execution_stats.go.
type tickStats struct {
	advanced int
	failed   int
	done     int
}

// Supervisor advances every node-task of one main-task to a terminal
// state by repeatedly polling the cluster and writing transitions through
// the Task Store's monotone UpdateStatus.
type Supervisor struct {
	store          store.Store
	adapter        clusteraccess.Adapter
	clusterID      string
	mainTaskID     string
	tickInterval   time.Duration
	pendingTimeout time.Duration
}

func New(st store.Store, adapter clusteraccess.Adapter, clusterID, mainTaskID string, tickInterval, pendingTimeout time.Duration) *Supervisor {
	return &Supervisor{
		store:          st,
		adapter:        adapter,
		clusterID:      clusterID,
		mainTaskID:     mainTaskID,
		tickInterval:   tickInterval,
		pendingTimeout: pendingTimeout,
	}
}

// Run executes the tick loop until every node-task is terminal or
// stopFlag reports true, polled once per tick. It never returns an error;
// per-node failures are terminal statuses, not loop-aborting conditions.
func (s *Supervisor) Run(ctx context.Context, stopFlag func() bool) {
	for {
		active, err := s.store.SelectActive(ctx, s.clusterID, s.mainTaskID)
		if err != nil {
			obslog.WithFields(obslog.Fields{
				"cluster_id":   s.clusterID,
				"main_task_id": s.mainTaskID,
				"error":        err.Error(),
			}).Warn("supervisor failed to read active node-tasks, retrying next tick")
		} else if len(active) == 0 {
			obslog.WithFields(obslog.Fields{
				"cluster_id":   s.clusterID,
				"main_task_id": s.mainTaskID,
			}).Info("supervisor exiting: no active node-tasks remain")
			return
		} else {
			stats := s.tick(ctx, active)
			obslog.WithFields(obslog.Fields{
				"cluster_id":   s.clusterID,
				"main_task_id": s.mainTaskID,
				"advanced":     stats.advanced,
				"done":         stats.done,
				"failed":       stats.failed,
			}).Info("supervisor tick complete")
		}

		if stopFlag() {
			obslog.WithFields(obslog.Fields{
				"cluster_id":   s.clusterID,
				"main_task_id": s.mainTaskID,
			}).Info("supervisor exiting: stop flag observed")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.tickInterval):
		}
	}
}

// tick advances every node-task in active by one step and returns the
// tick's bookkeeping for the log line.
func (s *Supervisor) tick(ctx context.Context, active []model.NodeTask) tickStats {
	var stats tickStats
	for _, t := range active {
		s.advanceOne(ctx, t, &stats)
	}
	return stats
}

func (s *Supervisor) advanceOne(ctx context.Context, t model.NodeTask, stats *tickStats) {
	if t.ScanStatus == model.ScanStatusPending && time.Since(t.TaskCreatedAt) > s.pendingTimeout {
		s.writeStatus(ctx, t.NodeTaskID, model.ScanStatusFailed, stats)
		return
	}

	phase, err := s.adapter.ReadPodPhase(ctx, t.Scanner)
	if err != nil {
		s.writeStatus(ctx, t.NodeTaskID, model.ScanStatusFailed, stats)
		return
	}

	status := statusForPhase(phase)
	if status == model.ScanStatusDone && !s.harvestResult(ctx, t) {
		status = model.ScanStatusFailed
	}
	s.writeStatus(ctx, t.NodeTaskID, status, stats)
}

// harvestResult reads and stores the pod's log before the caller writes
// the done transition, satisfying the invariant that a done node-task
// always has a corresponding ScanResult row. It returns false when the row
// could not be stored, and the caller then writes failed instead of done.
func (s *Supervisor) harvestResult(ctx context.Context, t model.NodeTask) bool {
	raw, err := s.adapter.ReadPodLog(ctx, t.Scanner)
	if err != nil {
		obslog.WithFields(obslog.Fields{
			"node_task_id": t.NodeTaskID,
			"error":        err.Error(),
		}).Warn("failed to read pod log for completed node-task")
		raw = []byte{}
	}

	resultJSON := normalizeResultJSON(raw)
	err = s.store.InsertResult(ctx, &model.ScanResult{
		ClusterID:      t.ClusterID,
		ClusterName:    t.ClusterName,
		NodeName:       t.NodeName,
		NodeIP:         t.NodeIP,
		MainTaskID:     t.MainTaskID,
		NodeTaskID:     t.NodeTaskID,
		ScanResultJSON: resultJSON,
		InsertedAt:     time.Now(),
	})
	if err != nil {
		obslog.WithFields(obslog.Fields{
			"node_task_id": t.NodeTaskID,
			"error":        err.Error(),
		}).Warn("failed to insert scan result")
		return false
	}
	return true
}

// normalizeResultJSON stores raw as-is if it parses as JSON, otherwise
// wraps it in a ResultEnvelope so downstream consumers always see JSON.
func normalizeResultJSON(raw []byte) string {
	var v interface{}
	if len(raw) > 0 && json.Unmarshal(raw, &v) == nil {
		return string(raw)
	}
	envelope := model.ResultEnvelope{RawOutput: string(raw), Error: "Invalid JSON format"}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return `{"raw_output":"","error":"Invalid JSON format"}`
	}
	return string(encoded)
}

func (s *Supervisor) writeStatus(ctx context.Context, nodeTaskID string, status model.ScanStatus, stats *tickStats) {
	applied, err := s.store.UpdateStatus(ctx, nodeTaskID, status)
	if err != nil {
		obslog.WithFields(obslog.Fields{
			"node_task_id": nodeTaskID,
			"error":        err.Error(),
		}).Warn("failed to update node-task status")
		return
	}
	if !applied {
		// Already terminal; the store rejected the write as retrograde.
		return
	}
	stats.advanced++
	if status.IsTerminal() {
		if status == model.ScanStatusFailed {
			stats.failed++
		} else {
			stats.done++
		}
	}
}

func statusForPhase(phase clusteraccess.PodPhase) model.ScanStatus {
	switch phase {
	case clusteraccess.PodPhasePending:
		return model.ScanStatusPending
	case clusteraccess.PodPhaseRunning:
		return model.ScanStatusRunning
	case clusteraccess.PodPhaseSucceeded:
		return model.ScanStatusDone
	default:
		// Failed and Unknown both collapse to failed.
		return model.ScanStatusFailed
	}
}
