// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package clusteraccess

import (
	"context"
	"fmt"
	"io"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/AMD-AGI/kube-benchscan/internal/apperrors"
)

// Namespace is where benchmark workloads run. The upstream tool this core
// was distilled from hard-codes "default"; kept unchanged.
const Namespace = "default"

// k8sAdapter implements Adapter over a client-go clientset, following the
// CoreV1()/BatchV1() call shape of
// Lens/modules/api/pkg/api/tracelens/pod_manager.go and
// Lens/modules/jobs/pkg/jobs/dataplane_installer/job.go.
type k8sAdapter struct {
	clientset kubernetes.Interface
}

// NewK8sAdapter wraps an already-constructed clientset. Exported so tests
// can inject k8s.io/client-go/kubernetes/fake.
func NewK8sAdapter(clientset kubernetes.Interface) Adapter {
	return &k8sAdapter{clientset: clientset}
}

func (a *k8sAdapter) ListNodes(ctx context.Context) ([]NodeInfo, error) {
	list, err := a.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, apperrors.NewError().
			WithCode(apperrors.TransportError).
			WithMessage("list nodes").
			WithError(err)
	}

	out := make([]NodeInfo, 0, len(list.Items))
	for _, n := range list.Items {
		info := NodeInfo{Name: n.Name, Labels: n.Labels}
		for _, addr := range n.Status.Addresses {
			if addr.Type == corev1.NodeInternalIP {
				info.InternalIP = addr.Address
				break
			}
		}
		out = append(out, info)
	}
	return out, nil
}

func (a *k8sAdapter) CreateWorkload(ctx context.Context, manifest *batchv1.Job) (string, error) {
	created, err := a.clientset.BatchV1().Jobs(Namespace).Create(ctx, manifest, metav1.CreateOptions{})
	if err != nil {
		if apierrors.IsAlreadyExists(err) {
			return "", apperrors.NewError().WithCode(apperrors.ClientError).WithMessage("workload already exists").WithError(err)
		}
		return "", apperrors.NewError().WithCode(apperrors.TransportError).WithMessage("create workload").WithError(err)
	}
	return created.Name, nil
}

func (a *k8sAdapter) FindPodForWorkload(ctx context.Context, workloadName string) (string, error) {
	list, err := a.clientset.CoreV1().Pods(Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: fmt.Sprintf("job-name=%s", workloadName),
	})
	if err != nil {
		return "", apperrors.NewError().WithCode(apperrors.TransportError).WithMessage("list pods for workload").WithError(err)
	}
	if len(list.Items) == 0 {
		return "", nil
	}
	return list.Items[0].Name, nil
}

func (a *k8sAdapter) ReadPodPhase(ctx context.Context, podName string) (PodPhase, error) {
	pod, err := a.clientset.CoreV1().Pods(Namespace).Get(ctx, podName, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", apperrors.NewError().WithCode(apperrors.RequestDataNotExisted).WithMessage("pod not found").WithError(err)
		}
		return "", apperrors.NewError().WithCode(apperrors.TransportError).WithMessage("read pod phase").WithError(err)
	}
	switch pod.Status.Phase {
	case corev1.PodPending:
		return PodPhasePending, nil
	case corev1.PodRunning:
		return PodPhaseRunning, nil
	case corev1.PodSucceeded:
		return PodPhaseSucceeded, nil
	case corev1.PodFailed:
		return PodPhaseFailed, nil
	default:
		return PodPhaseUnknown, nil
	}
}

func (a *k8sAdapter) ReadPodLog(ctx context.Context, podName string) ([]byte, error) {
	req := a.clientset.CoreV1().Pods(Namespace).GetLogs(podName, &corev1.PodLogOptions{})
	stream, err := req.Stream(ctx)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, apperrors.NewError().WithCode(apperrors.RequestDataNotExisted).WithMessage("pod not found").WithError(err)
		}
		return nil, apperrors.NewError().WithCode(apperrors.TransportError).WithMessage("read pod log").WithError(err)
	}
	defer stream.Close()

	buf, err := io.ReadAll(stream)
	if err != nil {
		return nil, apperrors.NewError().WithCode(apperrors.TransportError).WithMessage("read pod log stream").WithError(err)
	}
	return buf, nil
}

func (a *k8sAdapter) DeleteWorkload(ctx context.Context, workloadName string) error {
	propagation := metav1.DeletePropagationBackground
	err := a.clientset.BatchV1().Jobs(Namespace).Delete(ctx, workloadName, metav1.DeleteOptions{
		PropagationPolicy: &propagation,
	})
	if err != nil && !apierrors.IsNotFound(err) {
		return apperrors.NewError().WithCode(apperrors.TransportError).WithMessage("delete workload").WithError(err)
	}
	return nil
}
