// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package httpapi

import (
	"time"

	"github.com/AMD-AGI/kube-benchscan/internal/lifecycle"
)

// startRequest is the Start inbound body: snake_case inputs per spec.md §6.
type startRequest struct {
	ClusterID string `json:"cluster_id" binding:"required"`
	Image     string `json:"image"`
}

// startResponse carries camelCase outputs per spec.md §6.
type startResponse struct {
	MainTaskID string   `json:"mainTaskId"`
	NodeTaskID []string `json:"nodeTaskId"`
}

type nodeStatusDTO struct {
	NodeTaskID string `json:"nodeTaskId"`
	NodeName   string `json:"nodeName"`
	NodeIP     string `json:"nodeIp"`
	NodeRole   string `json:"nodeRole"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
}

type mainTaskSummaryDTO struct {
	MainTaskID string          `json:"mainTaskId"`
	CreatedAt  time.Time       `json:"createdAt"`
	Nodes      []nodeStatusDTO `json:"nodeStatuses"`
}

type queryResponse struct {
	MainTasks []mainTaskSummaryDTO `json:"mainTasks"`
}

type watchResponse struct {
	AllTasksCompleted bool            `json:"allTasksCompleted"`
	Total             int             `json:"total"`
	Completed         int             `json:"completed"`
	Message           string          `json:"message"`
	NodeStatuses      []nodeStatusDTO `json:"nodeStatuses"`
}

type nodeResultResponse struct {
	Status     string    `json:"status"`
	HasResult  bool      `json:"hasResult"`
	Result     string    `json:"result,omitempty"`
	InsertedAt time.Time `json:"insertedAt,omitempty"`
}

func toNodeStatusDTO(n lifecycle.NodeStatus) nodeStatusDTO {
	return nodeStatusDTO{
		NodeTaskID: n.NodeTaskID,
		NodeName:   n.NodeName,
		NodeIP:     n.NodeIP,
		NodeRole:   string(n.NodeRole),
		Status:     string(n.Status),
		Progress:   n.Progress,
	}
}

func toMainTaskSummaryDTO(s lifecycle.MainTaskSummary) mainTaskSummaryDTO {
	nodes := make([]nodeStatusDTO, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, toNodeStatusDTO(n))
	}
	return mainTaskSummaryDTO{MainTaskID: s.MainTaskID, CreatedAt: s.CreatedAt, Nodes: nodes}
}
