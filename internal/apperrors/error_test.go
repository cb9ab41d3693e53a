// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_WithoutInnerError(t *testing.T) {
	err := &Error{Code: PlanEmpty, Message: "no node-tasks launched"}

	result := err.Error()

	assert.Contains(t, result, "code 6101")
	assert.Contains(t, result, "message no node-tasks launched")
	assert.NotContains(t, result, "error")
}

func TestError_WithInnerError(t *testing.T) {
	inner := errors.New("connection refused")
	err := &Error{Code: TransportError, Message: "list nodes", InnerError: inner}

	result := err.Error()

	assert.Contains(t, result, "error connection refused")
}

func TestError_Chaining(t *testing.T) {
	inner := errors.New("boom")
	err := NewError().
		WithCode(ClusterNotFound).
		WithMessage("cluster missing").
		WithError(inner)

	assert.Equal(t, ClusterNotFound, err.Code)
	assert.Equal(t, "cluster missing", err.Message)
	assert.Equal(t, inner, err.InnerError)
}

func TestError_ImplementsErrorInterface(t *testing.T) {
	var _ error = NewError()
}

func TestCodeOf(t *testing.T) {
	err := NewError().WithCode(PlanEmpty)
	assert.Equal(t, PlanEmpty, CodeOf(err))
	assert.Equal(t, 0, CodeOf(errors.New("plain")))
}

func TestError_GetTopStackString(t *testing.T) {
	err := NewError()
	assert.Contains(t, err.GetTopStackString(), "error_test.go")
}
