// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/AMD-AGI/kube-benchscan/internal/apperrors"
	"github.com/AMD-AGI/kube-benchscan/internal/clusteraccess"
	"github.com/AMD-AGI/kube-benchscan/internal/model"
)

func TestPlan_ClassifiesMasterAndWorker(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		&corev1.Node{
			ObjectMeta: metav1.ObjectMeta{
				Name:   "node-a",
				Labels: map[string]string{"node-role.kubernetes.io/master": ""},
			},
			Status: corev1.NodeStatus{
				Addresses: []corev1.NodeAddress{{Type: corev1.NodeInternalIP, Address: "10.0.0.1"}},
			},
		},
		&corev1.Node{
			ObjectMeta: metav1.ObjectMeta{Name: "node-b"},
			Status: corev1.NodeStatus{
				Addresses: []corev1.NodeAddress{{Type: corev1.NodeInternalIP, Address: "10.0.0.2"}},
			},
		},
	)

	adapter := clusteraccess.NewK8sAdapter(clientset)
	nodes, err := adapter.ListNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	plans, err := plansFromNodes("c1", nodes)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	byName := map[string]Plan{}
	for _, p := range plans {
		byName[p.NodeName] = p
		assert.NotEmpty(t, p.NodeTaskID)
		assert.Contains(t, p.WorkloadName, "kube-bench-"+p.NodeName)
	}
	assert.Equal(t, model.NodeRoleMaster, byName["node-a"].NodeRole)
	assert.Equal(t, model.NodeRoleWorker, byName["node-b"].NodeRole)
	assert.Equal(t, "10.0.0.1", byName["node-a"].NodeIP)
}

func TestPlan_EmptyNodeListReturnsPlanEmpty(t *testing.T) {
	_, err := plansFromNodes("c1", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.PlanEmpty, apperrors.CodeOf(err))
}

func TestWorkloadName_TruncatesUUIDToEightChars(t *testing.T) {
	name := workloadName("node-a", "abcdefgh-ijkl-mnop")
	assert.Equal(t, "kube-bench-node-a-abcdefgh", name)
}
