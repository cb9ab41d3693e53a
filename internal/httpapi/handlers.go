// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package httpapi is a thin gin mapping layer over the five Lifecycle
// Controller operations. It carries no business logic of its own: every
// decision lives in internal/lifecycle.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AMD-AGI/kube-benchscan/internal/apperrors"
	"github.com/AMD-AGI/kube-benchscan/internal/lifecycle"
)

type handleFunc func(*gin.Context) (interface{}, error)

// handle runs fn and writes its result, following the response-wrapping
// pattern of SaFE/apiserver/pkg/handlers/cd-handlers/handler.go.
func handle(c *gin.Context, fn handleFunc) {
	response, err := fn(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// abortWithError maps an apperrors code to an HTTP status, following the
// 4xxx/5xxx/6xxx banding of internal/apperrors/codes.go.
func abortWithError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch {
	case code == apperrors.ClusterNotFound || code == apperrors.RequestDataNotExisted:
		status = http.StatusNotFound
	case code == apperrors.RequestParameterInvalid || code == apperrors.InvalidArgument || code == apperrors.PlanEmpty:
		status = http.StatusBadRequest
	case code == apperrors.K8SOperationError || code == apperrors.TransportError || code == apperrors.ClientError:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

// Handler wraps a lifecycle.Controller with gin route handlers.
type Handler struct {
	controller *lifecycle.Controller
}

func NewHandler(controller *lifecycle.Controller) *Handler {
	return &Handler{controller: controller}
}

func (h *Handler) start(c *gin.Context) (interface{}, error) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.NewError().
			WithCode(apperrors.RequestParameterInvalid).
			WithMessage("invalid request body").
			WithError(err)
	}

	mainTaskID, nodeTaskIDs, err := h.controller.Start(c.Request.Context(), req.ClusterID, req.Image)
	if err != nil {
		return nil, err
	}
	return startResponse{MainTaskID: mainTaskID, NodeTaskID: nodeTaskIDs}, nil
}

func (h *Handler) query(c *gin.Context) (interface{}, error) {
	clusterID := c.Query("cluster_id")
	mainTaskID := c.Query("main_task_id")

	summaries, err := h.controller.Query(c.Request.Context(), clusterID, mainTaskID)
	if err != nil {
		return nil, err
	}

	out := make([]mainTaskSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toMainTaskSummaryDTO(s))
	}
	return queryResponse{MainTasks: out}, nil
}

func (h *Handler) queryWatch(c *gin.Context) (interface{}, error) {
	clusterID := c.Query("cluster_id")
	mainTaskID := c.Query("main_task_id")
	if clusterID == "" || mainTaskID == "" {
		return nil, apperrors.NewError().
			WithCode(apperrors.RequestParameterInvalid).
			WithMessage("cluster_id and main_task_id are required")
	}

	watch, err := h.controller.QueryWatch(c.Request.Context(), clusterID, mainTaskID)
	if err != nil {
		return nil, err
	}

	nodes := make([]nodeStatusDTO, 0, len(watch.Nodes))
	for _, n := range watch.Nodes {
		nodes = append(nodes, toNodeStatusDTO(n))
	}
	return watchResponse{
		AllTasksCompleted: watch.AllTasksCompleted,
		Total:             watch.Total,
		Completed:         watch.Completed,
		Message:           watch.Message,
		NodeStatuses:      nodes,
	}, nil
}

func (h *Handler) fetchNodeResult(c *gin.Context) (interface{}, error) {
	clusterID := c.Query("cluster_id")
	nodeName := c.Query("node_name")
	if clusterID == "" || nodeName == "" {
		return nil, apperrors.NewError().
			WithCode(apperrors.RequestParameterInvalid).
			WithMessage("cluster_id and node_name are required")
	}

	result, err := h.controller.FetchNodeResult(c.Request.Context(), clusterID, nodeName)
	if err != nil {
		return nil, err
	}
	return nodeResultResponse{
		Status:     string(result.Status),
		HasResult:  result.HasResult,
		Result:     result.ResultJSON,
		InsertedAt: result.InsertedAt,
	}, nil
}

func (h *Handler) delete(c *gin.Context) (interface{}, error) {
	clusterID := c.Query("cluster_id")
	mainTaskID := c.Query("main_task_id")
	if clusterID == "" || mainTaskID == "" {
		return nil, apperrors.NewError().
			WithCode(apperrors.RequestParameterInvalid).
			WithMessage("cluster_id and main_task_id are required")
	}

	if err := h.controller.Delete(c.Request.Context(), clusterID, mainTaskID); err != nil {
		return nil, err
	}
	return gin.H{"message": "deleted"}, nil
}
