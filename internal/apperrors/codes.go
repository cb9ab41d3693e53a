// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package apperrors

// Error codes surfaced to callers of the lifecycle engine. The 4xxx/5xxx/6xxx
// banding follows the convention already in use across the Primus-SaFE
// services (request errors, internal errors, client/transport errors).
const (
	RequestParameterInvalid int = 4001
	RequestDataNotExisted   int = 4004
	InvalidArgument         int = 4017

	InternalError    int = 5000
	CodeDatabaseError int = 5002

	ClientError       int = 6001
	K8SOperationError int = 6002

	// Domain-specific codes named directly in spec.md §7.
	ClusterNotFound int = 6100
	PlanEmpty       int = 6101
	TransportError  int = 6102
)
