// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package planner turns a cluster's current node inventory into the set of
// per-node scan plans a main-task launches, per spec.md §4.4.
package planner

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AMD-AGI/kube-benchscan/internal/apperrors"
	"github.com/AMD-AGI/kube-benchscan/internal/clusteraccess"
	"github.com/AMD-AGI/kube-benchscan/internal/model"
)

// masterLabel is the well-known node label used to classify control-plane
// nodes; absence means worker.
const masterLabel = "node-role.kubernetes.io/master"

// Plan is one node's worth of scan intent, not yet persisted or launched.
type Plan struct {
	NodeName     string
	NodeIP       string
	NodeRole     model.NodeRole
	NodeTaskID   string
	WorkloadName string
}

// Planner resolves a cluster's adapter and lists its nodes into plans.
type Planner struct {
	factory clusteraccess.AdapterFactory
}

func New(factory clusteraccess.AdapterFactory) *Planner {
	return &Planner{factory: factory}
}

// Plan builds one Plan per node currently visible in the cluster. Returns
// apperrors code PlanEmpty if the cluster reports zero nodes, per spec.md
// §7 ("a main-task with no eligible nodes is an error, not an empty
// success").
func (p *Planner) Plan(ctx context.Context, cluster *model.Cluster) ([]Plan, error) {
	adapter, err := p.factory.Build(cluster)
	if err != nil {
		return nil, err
	}

	nodes, err := adapter.ListNodes(ctx)
	if err != nil {
		return nil, err
	}
	return plansFromNodes(cluster.ClusterID, nodes)
}

// plansFromNodes is the pure part of Plan, split out so it can be tested
// without a live or faked cluster connection.
func plansFromNodes(clusterID string, nodes []clusteraccess.NodeInfo) ([]Plan, error) {
	if len(nodes) == 0 {
		return nil, apperrors.NewError().
			WithCode(apperrors.PlanEmpty).
			WithMessagef("cluster %s has no nodes to scan", clusterID)
	}

	plans := make([]Plan, 0, len(nodes))
	for _, n := range nodes {
		nodeTaskID := uuid.New().String()
		plans = append(plans, Plan{
			NodeName:     n.Name,
			NodeIP:       n.InternalIP,
			NodeRole:     roleOf(n.Labels),
			NodeTaskID:   nodeTaskID,
			WorkloadName: workloadName(n.Name, nodeTaskID),
		})
	}
	return plans, nil
}

func roleOf(labels map[string]string) model.NodeRole {
	if _, ok := labels[masterLabel]; ok {
		return model.NodeRoleMaster
	}
	return model.NodeRoleWorker
}

// workloadName derives a Job name from the node name and the first 8 hex
// characters of the node-task id, unique per plan. The node name is not
// shortened, so a long node name gives a name over 63 characters.
func workloadName(nodeName, nodeTaskID string) string {
	suffix := nodeTaskID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("kube-bench-%s-%s", nodeName, suffix)
}
