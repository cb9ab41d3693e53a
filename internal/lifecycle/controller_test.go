// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/AMD-AGI/kube-benchscan/internal/apperrors"
	"github.com/AMD-AGI/kube-benchscan/internal/clusteraccess"
	"github.com/AMD-AGI/kube-benchscan/internal/launcher"
	"github.com/AMD-AGI/kube-benchscan/internal/model"
	"github.com/AMD-AGI/kube-benchscan/internal/planner"
	"github.com/AMD-AGI/kube-benchscan/internal/store/storetest"
	"github.com/AMD-AGI/kube-benchscan/internal/supervisor"
)

// fakeFactory satisfies clusteraccess.AdapterFactory by always returning
// the same adapter, standing in for *clusteraccess.Factory's live rest.Config
// construction in tests.
type fakeFactory struct {
	adapter clusteraccess.Adapter
}

func (f *fakeFactory) Build(*model.Cluster) (clusteraccess.Adapter, error) {
	return f.adapter, nil
}

func newTestController(st *storetest.Memory, clientset *fake.Clientset) *Controller {
	adapter := clusteraccess.NewK8sAdapter(clientset)
	factory := &fakeFactory{adapter: adapter}
	return &Controller{
		store:          st,
		factory:        factory,
		planner:        planner.New(factory),
		launcher:       launcher.New(st, 3, time.Millisecond),
		registry:       supervisor.NewRegistry(),
		defaultImage:   "aquasec/kube-bench:latest",
		tickInterval:   time.Millisecond,
		pendingTimeout: 300 * time.Second,
		joinTimeout:    50 * time.Millisecond,
		runCtx:         context.Background(),
	}
}

func podAppearingAfterCreate(clientset *fake.Clientset) {
	clientset.PrependReactor("create", "jobs", func(action k8stesting.Action) (bool, interface{}, error) {
		create := action.(k8stesting.CreateAction)
		job := create.GetObject().(metav1.Object)
		_, _ = clientset.CoreV1().Pods(clusteraccess.Namespace).Create(context.Background(), &corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{
				Name:   job.GetName() + "-pod",
				Labels: map[string]string{"job-name": job.GetName()},
			},
		}, metav1.CreateOptions{})
		return false, nil, nil
	})
}

func seedNode(clientset *fake.Clientset, name string) {
	_, _ = clientset.CoreV1().Nodes().Create(context.Background(), &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Addresses: []corev1.NodeAddress{{Type: corev1.NodeInternalIP, Address: "10.0.0.1"}},
		},
	}, metav1.CreateOptions{})
}

func TestStart_LaunchesOneNodeTaskPerNode(t *testing.T) {
	st := storetest.New()
	st.PutCluster(model.Cluster{ClusterID: "c1", APIServer: "https://example.invalid"})
	clientset := fake.NewSimpleClientset()
	seedNode(clientset, "node-a")
	seedNode(clientset, "node-b")
	podAppearingAfterCreate(clientset)

	ctrl := newTestController(st, clientset)
	mainTaskID, launched, err := ctrl.Start(context.Background(), "c1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, mainTaskID)
	assert.Len(t, launched, 2)
}

func TestStart_NoNodesReturnsPlanEmpty(t *testing.T) {
	st := storetest.New()
	st.PutCluster(model.Cluster{ClusterID: "c1", APIServer: "https://example.invalid"})
	ctrl := newTestController(st, fake.NewSimpleClientset())

	_, _, err := ctrl.Start(context.Background(), "c1", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.PlanEmpty, apperrors.CodeOf(err))
}

func TestDelete_PurgesStoreRows(t *testing.T) {
	st := storetest.New()
	st.PutCluster(model.Cluster{ClusterID: "c1", APIServer: "https://example.invalid"})
	require.NoError(t, st.InsertNodeTask(context.Background(), &model.NodeTask{
		ClusterID: "c1", MainTaskID: "m1", NodeTaskID: "nt1", WorkloadName: "kube-bench-node-a-aaaaaaaa",
	}))

	ctrl := newTestController(st, fake.NewSimpleClientset())
	err := ctrl.Delete(context.Background(), "c1", "m1")
	require.NoError(t, err)

	active, err := st.SelectActive(context.Background(), "c1", "m1")
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.False(t, ctrl.registry.Active("c1", "m1"))
}

func TestFetchNodeResult_NoPriorScanReturnsNotFound(t *testing.T) {
	st := storetest.New()
	ctrl := newTestController(st, fake.NewSimpleClientset())

	res, err := ctrl.FetchNodeResult(context.Background(), "c1", "node-a")
	require.NoError(t, err)
	assert.Equal(t, NodeResultNotFound, res.Status)
	assert.False(t, res.HasResult)
}

func TestFetchNodeResult_TerminalReturnsParsedResult(t *testing.T) {
	st := storetest.New()
	require.NoError(t, st.InsertNodeTask(context.Background(), &model.NodeTask{
		ClusterID: "c1", NodeTaskID: "nt1", NodeName: "node-a", ScanStatus: model.ScanStatusDone,
	}))
	require.NoError(t, st.InsertResult(context.Background(), &model.ScanResult{
		NodeTaskID: "nt1", ScanResultJSON: `{"ok":true}`,
	}))

	ctrl := newTestController(st, fake.NewSimpleClientset())
	res, err := ctrl.FetchNodeResult(context.Background(), "c1", "node-a")
	require.NoError(t, err)
	assert.True(t, res.HasResult)
	assert.JSONEq(t, `{"ok":true}`, res.ResultJSON)
}

func TestQueryWatch_ReportsCompletionSummary(t *testing.T) {
	st := storetest.New()
	require.NoError(t, st.InsertNodeTask(context.Background(), &model.NodeTask{
		ClusterID: "c1", MainTaskID: "m1", NodeTaskID: "nt1", ScanStatus: model.ScanStatusDone,
	}))
	require.NoError(t, st.InsertNodeTask(context.Background(), &model.NodeTask{
		ClusterID: "c1", MainTaskID: "m1", NodeTaskID: "nt2", ScanStatus: model.ScanStatusRunning,
	}))

	ctrl := newTestController(st, fake.NewSimpleClientset())
	watch, err := ctrl.QueryWatch(context.Background(), "c1", "m1")
	require.NoError(t, err)
	assert.False(t, watch.AllTasksCompleted)
	assert.Equal(t, 2, watch.Total)
	assert.Equal(t, 1, watch.Completed)
	assert.Equal(t, "Progress: 1/2 tasks completed", watch.Message)
}

func TestQueryWatch_AllCompletedMessage(t *testing.T) {
	st := storetest.New()
	require.NoError(t, st.InsertNodeTask(context.Background(), &model.NodeTask{
		ClusterID: "c1", MainTaskID: "m1", NodeTaskID: "nt1", ScanStatus: model.ScanStatusDone,
	}))

	ctrl := newTestController(st, fake.NewSimpleClientset())
	watch, err := ctrl.QueryWatch(context.Background(), "c1", "m1")
	require.NoError(t, err)
	assert.True(t, watch.AllTasksCompleted)
	assert.Equal(t, "All tasks completed", watch.Message)
}

func TestQueryWatch_NoTasksMessage(t *testing.T) {
	st := storetest.New()
	ctrl := newTestController(st, fake.NewSimpleClientset())

	watch, err := ctrl.QueryWatch(context.Background(), "c1", "m-unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, watch.Total)
	assert.Equal(t, "No tasks found", watch.Message)
}
