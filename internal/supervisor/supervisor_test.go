// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	batchv1 "k8s.io/api/batch/v1"

	"github.com/AMD-AGI/kube-benchscan/internal/clusteraccess"
	"github.com/AMD-AGI/kube-benchscan/internal/model"
	"github.com/AMD-AGI/kube-benchscan/internal/store/storetest"
)

// stubAdapter is a hand-rolled clusteraccess.Adapter double driven by
// per-pod-name phase/log tables, used to exercise the supervisor's tick
// logic without a fake clientset's label-selector plumbing.
type stubAdapter struct {
	phases map[string]clusteraccess.PodPhase
	logs   map[string][]byte
	errs   map[string]error
}

func newStubAdapter() *stubAdapter {
	return &stubAdapter{
		phases: map[string]clusteraccess.PodPhase{},
		logs:   map[string][]byte{},
		errs:   map[string]error{},
	}
}

func (s *stubAdapter) ListNodes(context.Context) ([]clusteraccess.NodeInfo, error) { return nil, nil }
func (s *stubAdapter) CreateWorkload(context.Context, *batchv1.Job) (string, error) {
	return "", nil
}
func (s *stubAdapter) FindPodForWorkload(context.Context, string) (string, error) { return "", nil }
func (s *stubAdapter) ReadPodPhase(_ context.Context, podName string) (clusteraccess.PodPhase, error) {
	if err, ok := s.errs[podName]; ok {
		return "", err
	}
	return s.phases[podName], nil
}
func (s *stubAdapter) ReadPodLog(_ context.Context, podName string) ([]byte, error) {
	return s.logs[podName], nil
}
func (s *stubAdapter) DeleteWorkload(context.Context, string) error { return nil }

func seedTask(t *testing.T, st *storetest.Memory, nodeTaskID, podName string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, st.InsertNodeTask(context.Background(), &model.NodeTask{
		ClusterID:     "c1",
		MainTaskID:    "m1",
		NodeTaskID:    nodeTaskID,
		NodeName:      "node-" + nodeTaskID,
		Scanner:       podName,
		WorkloadName:  "kube-bench-" + nodeTaskID,
		ScanStatus:    model.ScanStatusPending,
		TaskCreatedAt: createdAt,
	}))
}

func TestTick_SucceededPodHarvestsResultBeforeDone(t *testing.T) {
	st := storetest.New()
	adapter := newStubAdapter()
	seedTask(t, st, "nt1", "pod-1", time.Now())
	adapter.phases["pod-1"] = clusteraccess.PodPhaseSucceeded
	adapter.logs["pod-1"] = []byte(`{"Totals":{"total_pass":10}}`)

	sup := New(st, adapter, "c1", "m1", time.Minute, 300*time.Second)
	active, err := st.SelectActive(context.Background(), "c1", "m1")
	require.NoError(t, err)
	stats := sup.tick(context.Background(), active)

	assert.Equal(t, 1, stats.done)
	result, err := st.GetResult(context.Background(), "nt1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.JSONEq(t, `{"Totals":{"total_pass":10}}`, result.ScanResultJSON)
}

func TestTick_NonJSONLogWrapsInEnvelope(t *testing.T) {
	st := storetest.New()
	adapter := newStubAdapter()
	seedTask(t, st, "nt1", "pod-1", time.Now())
	adapter.phases["pod-1"] = clusteraccess.PodPhaseSucceeded
	adapter.logs["pod-1"] = []byte("not json at all")

	sup := New(st, adapter, "c1", "m1", time.Minute, 300*time.Second)
	active, _ := st.SelectActive(context.Background(), "c1", "m1")
	sup.tick(context.Background(), active)

	result, err := st.GetResult(context.Background(), "nt1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.JSONEq(t, `{"raw_output":"not json at all","error":"Invalid JSON format"}`, result.ScanResultJSON)
}

func TestTick_TransportErrorMarksFailed(t *testing.T) {
	st := storetest.New()
	adapter := newStubAdapter()
	seedTask(t, st, "nt1", "pod-1", time.Now())
	adapter.errs["pod-1"] = assertError{}

	sup := New(st, adapter, "c1", "m1", time.Minute, 300*time.Second)
	active, _ := st.SelectActive(context.Background(), "c1", "m1")
	stats := sup.tick(context.Background(), active)

	assert.Equal(t, 1, stats.failed)
	active, err := st.SelectActive(context.Background(), "c1", "m1")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestTick_PendingTimeoutMarksFailed(t *testing.T) {
	st := storetest.New()
	adapter := newStubAdapter()
	seedTask(t, st, "nt1", "pod-1", time.Now().Add(-301*time.Second))

	sup := New(st, adapter, "c1", "m1", time.Minute, 300*time.Second)
	active, _ := st.SelectActive(context.Background(), "c1", "m1")
	stats := sup.tick(context.Background(), active)

	assert.Equal(t, 1, stats.failed)
}

func TestRun_ExitsWhenActiveSetEmpties(t *testing.T) {
	st := storetest.New()
	adapter := newStubAdapter()
	seedTask(t, st, "nt1", "pod-1", time.Now())
	adapter.phases["pod-1"] = clusteraccess.PodPhaseSucceeded
	adapter.logs["pod-1"] = []byte(`{}`)

	sup := New(st, adapter, "c1", "m1", time.Millisecond, 300*time.Second)
	done := make(chan struct{})
	go func() {
		sup.Run(context.Background(), func() bool { return false })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not exit after node-task reached done")
	}
}

type assertError struct{}

func (assertError) Error() string { return "transport error" }
