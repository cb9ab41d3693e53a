// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package model holds the three first-class entities of the scan lifecycle
// engine (Cluster, NodeTask, ScanResult) and their enum types.
package model

import "time"

// NodeRole classifies a cluster node for display/selection purposes.
type NodeRole string

const (
	NodeRoleMaster NodeRole = "master"
	NodeRoleWorker NodeRole = "worker"
)

// ScanStatus is the node-task state machine: pending -> running -> done,
// or * -> failed. done and failed are terminal.
type ScanStatus string

const (
	ScanStatusPending ScanStatus = "pending"
	ScanStatusRunning ScanStatus = "running"
	ScanStatusDone    ScanStatus = "done"
	ScanStatusFailed  ScanStatus = "failed"
)

// IsTerminal reports whether s is a terminal state (done or failed).
func (s ScanStatus) IsTerminal() bool {
	return s == ScanStatusDone || s == ScanStatusFailed
}

// Cluster is read-only to this core; owned by an external CRUD collaborator.
// It is persisted in the same database so the Task Store can resolve
// cluster_id -> access credentials without an extra network hop.
type Cluster struct {
	ClusterID   string `gorm:"column:cluster_id;primaryKey"`
	ClusterName string `gorm:"column:cluster_name"`
	APIServer   string `gorm:"column:api_server"`
	// AccessToken is a secret. Never log it.
	AccessToken string `gorm:"column:access_token"`
}

func (Cluster) TableName() string { return "clusters" }

// NodeTask is one row per (main-task, node) pair.
type NodeTask struct {
	ClusterID     string     `gorm:"column:cluster_id;index:idx_node_task_main"`
	ClusterName   string     `gorm:"column:cluster_name"`
	MainTaskID    string     `gorm:"column:main_task_id;index:idx_node_task_main"`
	NodeTaskID    string     `gorm:"column:node_task_id;primaryKey"`
	NodeName      string     `gorm:"column:node_name"`
	NodeIP        string     `gorm:"column:node_ip"`
	NodeRole      NodeRole   `gorm:"column:node_role"`
	Scanner       string     `gorm:"column:scanner"`
	WorkloadName  string     `gorm:"column:workload_name"`
	ScanStatus    ScanStatus `gorm:"column:scan_status"`
	TaskCreatedAt time.Time  `gorm:"column:task_created_at"`
}

func (NodeTask) TableName() string { return "node_tasks" }

// ScanResult is one row per NodeTask that reached done, whether or not its
// output parsed as JSON. Never mutated after insert.
type ScanResult struct {
	ClusterID   string `gorm:"column:cluster_id"`
	ClusterName string `gorm:"column:cluster_name"`
	NodeName    string `gorm:"column:node_name"`
	NodeIP      string `gorm:"column:node_ip"`
	MainTaskID  string `gorm:"column:main_task_id"`
	NodeTaskID  string `gorm:"column:node_task_id;primaryKey"`
	// ScanResult is stored as raw JSON text: either the benchmark's native
	// output or an envelope {raw_output, error} when it didn't parse.
	ScanResultJSON string    `gorm:"column:scan_result;type:jsonb"`
	InsertedAt     time.Time `gorm:"column:inserted_at"`
}

func (ScanResult) TableName() string { return "scan_results" }

// ResultEnvelope wraps non-JSON benchmark output, per spec.md §4.6.
type ResultEnvelope struct {
	RawOutput string `json:"raw_output"`
	Error     string `json:"error"`
}
