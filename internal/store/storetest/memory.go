// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package storetest is an in-memory store.Store double used by unit tests
// across the engine. It implements the same monotonicity and idempotence
// contract as the Postgres-backed store, so tests exercise the real
// behavioral contract without a database.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/AMD-AGI/kube-benchscan/internal/apperrors"
	"github.com/AMD-AGI/kube-benchscan/internal/model"
	"github.com/AMD-AGI/kube-benchscan/internal/store"
)

// Memory is a goroutine-safe in-memory implementation of store.Store.
type Memory struct {
	mu        sync.Mutex
	clusters  map[string]model.Cluster
	nodeTasks map[string]model.NodeTask
	results   map[string]model.ScanResult
}

func New() *Memory {
	return &Memory{
		clusters:  map[string]model.Cluster{},
		nodeTasks: map[string]model.NodeTask{},
		results:   map[string]model.ScanResult{},
	}
}

// PutCluster seeds a cluster row, as an external CRUD collaborator would.
func (m *Memory) PutCluster(c model.Cluster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusters[c.ClusterID] = c
}

func (m *Memory) GetCluster(_ context.Context, clusterID string) (*model.Cluster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clusters[clusterID]
	if !ok {
		return nil, apperrors.NewError().WithCode(apperrors.ClusterNotFound).WithMessagef("cluster %s not found", clusterID)
	}
	return &c, nil
}

func (m *Memory) InsertNodeTask(_ context.Context, row *model.NodeTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.nodeTasks[row.NodeTaskID]; exists {
		return apperrors.NewError().WithCode(apperrors.CodeDatabaseError).WithMessage("duplicate node_task_id")
	}
	m.nodeTasks[row.NodeTaskID] = *row
	return nil
}

func (m *Memory) UpdateStatus(_ context.Context, nodeTaskID string, newStatus model.ScanStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	nt, ok := m.nodeTasks[nodeTaskID]
	if !ok {
		return false, nil
	}
	if nt.ScanStatus.IsTerminal() {
		return false, nil
	}
	nt.ScanStatus = newStatus
	m.nodeTasks[nodeTaskID] = nt
	return true, nil
}

func (m *Memory) SelectActive(_ context.Context, clusterID, mainTaskID string) ([]model.NodeTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.NodeTask
	for _, nt := range m.nodeTasks {
		if nt.ClusterID == clusterID && nt.MainTaskID == mainTaskID && !nt.ScanStatus.IsTerminal() {
			out = append(out, nt)
		}
	}
	sortByNodeTaskID(out)
	return out, nil
}

func (m *Memory) Summarize(_ context.Context, clusterID, mainTaskID string) (store.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s store.Summary
	for _, nt := range m.nodeTasks {
		if nt.ClusterID != clusterID || nt.MainTaskID != mainTaskID {
			continue
		}
		s.Total++
		if nt.ScanStatus.IsTerminal() {
			s.Completed++
		}
	}
	return s, nil
}

func (m *Memory) InsertResult(_ context.Context, result *model.ScanResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.results[result.NodeTaskID]; exists {
		return nil
	}
	m.results[result.NodeTaskID] = *result
	return nil
}

func (m *Memory) DeleteMainTask(_ context.Context, clusterID, mainTaskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, nt := range m.nodeTasks {
		if nt.ClusterID == clusterID && nt.MainTaskID == mainTaskID {
			delete(m.nodeTasks, id)
			delete(m.results, id)
		}
	}
	return nil
}

func (m *Memory) ListWorkloadNames(_ context.Context, clusterID, mainTaskID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, nt := range m.nodeTasks {
		if nt.ClusterID == clusterID && nt.MainTaskID == mainTaskID {
			out = append(out, nt.WorkloadName)
		}
	}
	return out, nil
}

func (m *Memory) ListMainTasks(_ context.Context, clusterID, mainTaskID string) ([]store.MainTaskRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.MainTaskRow
	for _, nt := range m.nodeTasks {
		if clusterID != "" && nt.ClusterID != clusterID {
			continue
		}
		if mainTaskID != "" && nt.MainTaskID != mainTaskID {
			continue
		}
		out = append(out, nt)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TaskCreatedAt.After(out[j].TaskCreatedAt)
	})
	return out, nil
}

func (m *Memory) ListNonTerminalMainTasks(_ context.Context) ([]store.MainTaskRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[store.MainTaskRef]bool{}
	var out []store.MainTaskRef
	for _, nt := range m.nodeTasks {
		if nt.ScanStatus.IsTerminal() {
			continue
		}
		ref := store.MainTaskRef{ClusterID: nt.ClusterID, MainTaskID: nt.MainTaskID}
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	return out, nil
}

func (m *Memory) GetResult(_ context.Context, nodeTaskID string) (*model.ScanResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[nodeTaskID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) LatestNodeTaskByName(_ context.Context, clusterID, nodeName string) (*model.NodeTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.NodeTask
	for _, nt := range m.nodeTasks {
		nt := nt
		if nt.ClusterID != clusterID || nt.NodeName != nodeName {
			continue
		}
		if latest == nil || nt.TaskCreatedAt.After(latest.TaskCreatedAt) {
			latest = &nt
		}
	}
	return latest, nil
}

func sortByNodeTaskID(rows []model.NodeTask) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].NodeTaskID < rows[j].NodeTaskID })
}

var _ store.Store = (*Memory)(nil)
