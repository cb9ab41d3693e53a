// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/AMD-AGI/kube-benchscan/internal/lifecycle"
)

// NewRouter builds the gin engine exposing the five lifecycle operations
// under /api/v1/scans.
func NewRouter(controller *lifecycle.Controller) *gin.Engine {
	h := NewHandler(controller)

	r := gin.New()
	r.Use(gin.Recovery())

	group := r.Group("/api/v1/scans")
	group.POST("", func(c *gin.Context) { handle(c, h.start) })
	group.GET("", func(c *gin.Context) { handle(c, h.query) })
	group.GET("/watch", func(c *gin.Context) { handle(c, h.queryWatch) })
	group.GET("/node-result", func(c *gin.Context) { handle(c, h.fetchNodeResult) })
	group.DELETE("", func(c *gin.Context) { handle(c, h.delete) })

	return r
}
