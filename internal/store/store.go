// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package store is the Task Store: the durable mapping of main-task ->
// node-task records and node-task -> result blob described in spec.md §4.2.
package store

import (
	"context"

	"github.com/AMD-AGI/kube-benchscan/internal/model"
)

// Summary is the {total, completed} pair Summarize returns.
type Summary struct {
	Total     int
	Completed int
}

// MainTaskRef identifies one live main-task, used by the reconciler sweep
// to discover work that needs a supervisor after a restart.
type MainTaskRef struct {
	ClusterID  string
	MainTaskID string
}

// Store is the Task Store contract of spec.md §4.2, plus the Cluster
// Registry read path and reconciler-sweep listing SPEC_FULL.md adds.
type Store interface {
	// GetCluster resolves a cluster_id to its connection details. Returns
	// apperrors with code ClusterNotFound if absent.
	GetCluster(ctx context.Context, clusterID string) (*model.Cluster, error)

	// InsertNodeTask is atomic; fails on duplicate node_task_id.
	InsertNodeTask(ctx context.Context, row *model.NodeTask) error

	// UpdateStatus is atomic and rejects transitions out of a terminal
	// state. Returns (applied=false, nil) — not an error — when the
	// current status is already terminal, so callers can treat it as
	// "already terminal, skip" per spec.md §4.6.
	UpdateStatus(ctx context.Context, nodeTaskID string, newStatus model.ScanStatus) (applied bool, err error)

	// SelectActive returns node-tasks with scan_status not in {done, failed}.
	SelectActive(ctx context.Context, clusterID, mainTaskID string) ([]model.NodeTask, error)

	// Summarize returns {total, completed} for a main-task.
	Summarize(ctx context.Context, clusterID, mainTaskID string) (Summary, error)

	// InsertResult is atomic; a no-op (not an error) on duplicate node_task_id.
	InsertResult(ctx context.Context, result *model.ScanResult) error

	// DeleteMainTask deletes both tables' rows for the tuple in one
	// transaction.
	DeleteMainTask(ctx context.Context, clusterID, mainTaskID string) error

	// ListWorkloadNames returns the workload_name of every node-task for
	// the main-task, used by Delete to know what to tear down.
	ListWorkloadNames(ctx context.Context, clusterID, mainTaskID string) ([]string, error)

	// ListMainTasks returns the node-task rows for a cluster (or all
	// clusters when clusterID is ""), optionally limited to one main-task,
	// newest first; Query groups them into per-main-task summaries.
	ListMainTasks(ctx context.Context, clusterID string, mainTaskID string) ([]MainTaskRow, error)

	// ListNonTerminalMainTasks returns every (cluster_id, main_task_id)
	// pair with at least one non-terminal node-task, for the reconciler
	// sweep.
	ListNonTerminalMainTasks(ctx context.Context) ([]MainTaskRef, error)

	// GetResult returns the ScanResult for a node-task, or nil if none
	// exists yet.
	GetResult(ctx context.Context, nodeTaskID string) (*model.ScanResult, error)

	// LatestNodeTaskByName returns the most recently created node-task for
	// (clusterID, nodeName), or nil if none exists.
	LatestNodeTaskByName(ctx context.Context, clusterID, nodeName string) (*model.NodeTask, error)
}

// MainTaskRow is one node-task's worth of the denormalized listing Query
// needs, grouped by the caller into per-main-task summaries.
type MainTaskRow = model.NodeTask
