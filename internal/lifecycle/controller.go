// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package lifecycle is the Lifecycle Controller of spec.md §4.7: the
// external-facing Start/Query/QueryWatch/FetchNodeResult/Delete surface
// and the registry of live supervisors.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AMD-AGI/kube-benchscan/internal/clusteraccess"
	"github.com/AMD-AGI/kube-benchscan/internal/launcher"
	"github.com/AMD-AGI/kube-benchscan/internal/model"
	"github.com/AMD-AGI/kube-benchscan/internal/obslog"
	"github.com/AMD-AGI/kube-benchscan/internal/planner"
	"github.com/AMD-AGI/kube-benchscan/internal/store"
	"github.com/AMD-AGI/kube-benchscan/internal/supervisor"
)

// NodeStatus is one node-task's worth of the Query/QueryWatch response.
type NodeStatus struct {
	NodeTaskID string
	NodeName   string
	NodeIP     string
	NodeRole   model.NodeRole
	Status     model.ScanStatus
	Progress   int
}

// MainTaskSummary is one main-task's worth of the Query response.
type MainTaskSummary struct {
	ClusterID  string
	MainTaskID string
	CreatedAt  time.Time
	Nodes      []NodeStatus
}

// WatchSummary is the lightweight QueryWatch response.
type WatchSummary struct {
	AllTasksCompleted bool
	Total             int
	Completed         int
	Message           string
	Nodes             []NodeStatus
}

// NodeResultNotFound is the sentinel Status value FetchNodeResult returns
// when no node-task has ever been recorded for (cluster, node), per
// spec.md §7: a soft not-found, not a Go error.
const NodeResultNotFound model.ScanStatus = "not_found"

// NodeResult is the FetchNodeResult response.
type NodeResult struct {
	Status     model.ScanStatus
	ResultJSON string
	InsertedAt time.Time
	HasResult  bool
}

// Controller ties the Planner, Launcher and Supervisor registry to the
// Task Store and Cluster Access Adapter factory, implementing spec.md
// §4.7 end to end.
type Controller struct {
	store    store.Store
	factory  clusteraccess.AdapterFactory
	planner  *planner.Planner
	launcher *launcher.Launcher
	registry *supervisor.Registry

	defaultImage   string
	tickInterval   time.Duration
	pendingTimeout time.Duration
	joinTimeout    time.Duration

	runCtx context.Context
}

// New wires a Controller from its collaborators. runCtx bounds the
// lifetime of every supervisor goroutine this controller spawns; callers
// typically pass the process's root context.
func New(
	runCtx context.Context,
	st store.Store,
	factory clusteraccess.AdapterFactory,
	pl *planner.Planner,
	lc *launcher.Launcher,
	defaultImage string,
	tickInterval, pendingTimeout, joinTimeout time.Duration,
) *Controller {
	return &Controller{
		store:          st,
		factory:        factory,
		planner:        pl,
		launcher:       lc,
		registry:       supervisor.NewRegistry(),
		defaultImage:   defaultImage,
		tickInterval:   tickInterval,
		pendingTimeout: pendingTimeout,
		joinTimeout:    joinTimeout,
		runCtx:         runCtx,
	}
}

// Start plans and launches a scan over cluster_id's current node
// inventory, registers and starts its supervisor, and returns the
// generated main_task_id plus the node-task ids that launched
// successfully. image overrides the configured default benchmark image
// when non-empty.
func (c *Controller) Start(ctx context.Context, clusterID, image string) (string, []string, error) {
	cluster, err := c.store.GetCluster(ctx, clusterID)
	if err != nil {
		return "", nil, err
	}

	adapter, err := c.factory.Build(cluster)
	if err != nil {
		return "", nil, err
	}

	plans, err := c.planner.Plan(ctx, cluster)
	if err != nil {
		return "", nil, err
	}

	if image == "" {
		image = c.defaultImage
	}

	mainTaskID := uuid.New().String()
	launched, err := c.launcher.Launch(ctx, adapter, cluster, mainTaskID, image, plans)
	if err != nil {
		return "", nil, err
	}

	sup := supervisor.New(c.store, adapter, clusterID, mainTaskID, c.tickInterval, c.pendingTimeout)
	c.registry.Start(c.runCtx, clusterID, mainTaskID, sup)

	obslog.WithFields(obslog.Fields{
		"cluster_id":   clusterID,
		"main_task_id": mainTaskID,
		"launched":     len(launched),
	}).Info("scan started")

	return mainTaskID, launched, nil
}

// Query lists main-task summaries for a cluster, optionally filtered to
// one main_task_id, newest first.
func (c *Controller) Query(ctx context.Context, clusterID, mainTaskID string) ([]MainTaskSummary, error) {
	rows, err := c.store.ListMainTasks(ctx, clusterID, mainTaskID)
	if err != nil {
		return nil, err
	}
	return groupByMainTask(rows), nil
}

// QueryWatch is the lightweight poll endpoint for one main-task.
func (c *Controller) QueryWatch(ctx context.Context, clusterID, mainTaskID string) (*WatchSummary, error) {
	rows, err := c.store.ListMainTasks(ctx, clusterID, mainTaskID)
	if err != nil {
		return nil, err
	}

	summary, err := c.store.Summarize(ctx, clusterID, mainTaskID)
	if err != nil {
		return nil, err
	}

	nodes := make([]NodeStatus, 0, len(rows))
	for _, r := range rows {
		nodes = append(nodes, toNodeStatus(r))
	}

	return &WatchSummary{
		AllTasksCompleted: summary.Total > 0 && summary.Completed == summary.Total,
		Total:             summary.Total,
		Completed:         summary.Completed,
		Message:           watchMessage(summary.Total, summary.Completed),
		Nodes:             nodes,
	}, nil
}

// watchMessage mirrors get_task_watch_status's three-way message, per
// original_source/backend/app/services/kubernetes_service.py:700-733.
func watchMessage(total, completed int) string {
	switch {
	case total == 0:
		return "No tasks found"
	case completed == total:
		return "All tasks completed"
	default:
		return fmt.Sprintf("Progress: %d/%d tasks completed", completed, total)
	}
}

// FetchNodeResult returns the latest node-task's status for a node, plus
// its parsed result when terminal and a ScanResult exists.
func (c *Controller) FetchNodeResult(ctx context.Context, clusterID, nodeName string) (*NodeResult, error) {
	nt, err := c.store.LatestNodeTaskByName(ctx, clusterID, nodeName)
	if err != nil {
		return nil, err
	}
	if nt == nil {
		return &NodeResult{Status: NodeResultNotFound}, nil
	}

	out := &NodeResult{Status: nt.ScanStatus}
	if !nt.ScanStatus.IsTerminal() {
		return out, nil
	}

	result, err := c.store.GetResult(ctx, nt.NodeTaskID)
	if err != nil {
		return nil, err
	}
	if result != nil {
		out.HasResult = true
		out.ResultJSON = result.ScanResultJSON
		out.InsertedAt = result.InsertedAt
	}
	return out, nil
}

// Delete runs the race-free teardown protocol of spec.md §4.7: stop the
// supervisor, bound-wait its exit, best-effort delete every workload,
// purge the store in one transaction, and clear the registry entry.
func (c *Controller) Delete(ctx context.Context, clusterID, mainTaskID string) error {
	c.registry.Stop(clusterID, mainTaskID, c.joinTimeout)

	cluster, err := c.store.GetCluster(ctx, clusterID)
	if err != nil {
		return err
	}
	adapter, err := c.factory.Build(cluster)
	if err != nil {
		return err
	}

	names, err := c.store.ListWorkloadNames(ctx, clusterID, mainTaskID)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := adapter.DeleteWorkload(ctx, name); err != nil {
			obslog.WithFields(obslog.Fields{
				"cluster_id":    clusterID,
				"main_task_id":  mainTaskID,
				"workload_name": name,
				"error":         err.Error(),
			}).Warn("best-effort workload delete failed")
		}
	}

	if err := c.store.DeleteMainTask(ctx, clusterID, mainTaskID); err != nil {
		return err
	}

	c.registry.Clear(clusterID, mainTaskID)
	return nil
}

func toNodeStatus(nt model.NodeTask) NodeStatus {
	return NodeStatus{
		NodeTaskID: nt.NodeTaskID,
		NodeName:   nt.NodeName,
		NodeIP:     nt.NodeIP,
		NodeRole:   nt.NodeRole,
		Status:     nt.ScanStatus,
		Progress:   progressFor(nt.ScanStatus),
	}
}

func progressFor(status model.ScanStatus) int {
	switch status {
	case model.ScanStatusRunning:
		return 50
	case model.ScanStatusDone:
		return 100
	default:
		return 0
	}
}

func groupByMainTask(rows []store.MainTaskRow) []MainTaskSummary {
	order := make([]string, 0)
	byKey := map[string]*MainTaskSummary{}

	for _, r := range rows {
		k := r.ClusterID + "/" + r.MainTaskID
		s, ok := byKey[k]
		if !ok {
			s = &MainTaskSummary{ClusterID: r.ClusterID, MainTaskID: r.MainTaskID, CreatedAt: r.TaskCreatedAt}
			byKey[k] = s
			order = append(order, k)
		}
		if r.TaskCreatedAt.After(s.CreatedAt) {
			s.CreatedAt = r.TaskCreatedAt
		}
		s.Nodes = append(s.Nodes, toNodeStatus(r))
	}

	out := make([]MainTaskSummary, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}
