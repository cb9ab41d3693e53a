// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package workload builds the Kubernetes Job manifest a scan runs as.
package workload

import (
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// Namespace mirrors clusteraccess.Namespace; the upstream kube-bench-ui
	// core hard-codes "default" for every workload it launches.
	Namespace      = "default"
	containerName  = "kube-bench"
	hostnameLabel  = "kubernetes.io/hostname"
	benchmarkArg   = "--json"
	ttlAfterFinish = int32(600)
)

// Manifest builds the single-container, single-node Job that runs a
// benchmark scan, carrying over the shape the kube-bench-ui core built:
// hostname-pinned via nodeSelector, restartPolicy Never, no retries, and
// a ttlSecondsAfterFinished cleanup window so completed jobs self-prune.
func Manifest(nodeName, workloadName, image string) *batchv1.Job {
	backoffLimit := int32(0)
	ttl := ttlAfterFinish

	return &batchv1.Job{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "batch/v1",
			Kind:       "Job",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      workloadName,
			Namespace: Namespace,
		},
		Spec: batchv1.JobSpec{
			BackoffLimit:            &backoffLimit,
			TTLSecondsAfterFinished: &ttl,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Name: workloadName,
				},
				Spec: corev1.PodSpec{
					NodeSelector: map[string]string{
						hostnameLabel: nodeName,
					},
					RestartPolicy: corev1.RestartPolicyNever,
					Containers: []corev1.Container{
						{
							Name:  containerName,
							Image: image,
							Args:  []string{benchmarkArg},
						},
					},
				},
			},
		},
	}
}
