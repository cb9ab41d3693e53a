// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package clusteraccess is the Cluster Access Adapter of spec.md §4.1: a
// uniform capability over a cluster's control plane, wrapping credentialed
// access to a Kubernetes-compatible API.
package clusteraccess

import (
	"context"

	batchv1 "k8s.io/api/batch/v1"
)

// NodeInfo is the subset of node data the Planner needs.
type NodeInfo struct {
	Name       string
	InternalIP string
	Labels     map[string]string
}

// PodPhase mirrors the five phases spec.md's table lists.
type PodPhase string

const (
	PodPhasePending   PodPhase = "Pending"
	PodPhaseRunning   PodPhase = "Running"
	PodPhaseSucceeded PodPhase = "Succeeded"
	PodPhaseFailed    PodPhase = "Failed"
	PodPhaseUnknown   PodPhase = "Unknown"
)

// Adapter is the uniform capability over a single cluster's control plane.
// Every implementation must be idempotent to the extent the upstream API
// allows (DeleteWorkload treats not-found as success).
type Adapter interface {
	ListNodes(ctx context.Context) ([]NodeInfo, error)
	CreateWorkload(ctx context.Context, manifest *batchv1.Job) (workloadRef string, err error)
	// FindPodForWorkload returns ("", nil) when no pod has materialized yet.
	FindPodForWorkload(ctx context.Context, workloadName string) (podName string, err error)
	ReadPodPhase(ctx context.Context, podName string) (PodPhase, error)
	ReadPodLog(ctx context.Context, podName string) ([]byte, error)
	// DeleteWorkload treats not-found as success.
	DeleteWorkload(ctx context.Context, workloadName string) error
}
