//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package common provides shared types and utilities used across the
// rule engine packages.
//
// # Error Handling
//
// The [PolicyError] type provides structured error information for
// authorization failures, including reason codes suitable for access
// log records.
package common

import (
	"fmt"
)

// ReasonCode classifies an authorization failure for access log records.
type ReasonCode string

// The reason codes recorded on failed authorizations.
const (
	// ReasonUnknown covers unexpected error conditions.
	ReasonUnknown ReasonCode = "UNKNOWN_ERROR"
	// ReasonNotFound indicates an entity was not present in the backend.
	ReasonNotFound ReasonCode = "NOTFOUND_ERROR"
	// ReasonStorage indicates the policy backend failed to serve a request.
	ReasonStorage ReasonCode = "STORAGE_ERROR"
	// ReasonNetwork indicates a remote backend could not be reached.
	ReasonNetwork ReasonCode = "NETWORK_ERROR"
	// ReasonCompilation indicates rule text was rejected by the compiler.
	ReasonCompilation ReasonCode = "COMPILATION_ERROR"
	// ReasonEvaluation indicates a fault in the evaluation pipeline.
	ReasonEvaluation ReasonCode = "EVALUATION_ERROR"
	// ReasonInvalidParam indicates a malformed caller request.
	ReasonInvalidParam ReasonCode = "INVALPARAM_ERROR"
)

// PolicyError represents an error encountered during policy evaluation.
//
// PolicyError provides structured error information that can be included
// in access log records for audit purposes. It includes both a machine-readable
// reason code and a human-readable message.
//
// PolicyError is returned by backend methods and policy evaluation functions
// instead of the standard error interface to ensure audit trail completeness.
type PolicyError struct {
	// ReasonCode is the machine-readable error classification for access logs.
	ReasonCode ReasonCode
	// Reason is a human-readable description of the error.
	Reason string
}

// Error implements the error interface, returning a formatted string
// containing both the reason message and the reason code.
func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s(code-%s)", e.Reason, e.ReasonCode)
}

// NewError creates a new [PolicyError] with the specified reason code and message.
func NewError(code ReasonCode, msg string) *PolicyError {
	return &PolicyError{ReasonCode: code, Reason: msg}
}

// NewErrorf creates a new [PolicyError] with a formatted message.
func NewErrorf(code ReasonCode, format string, args ...interface{}) *PolicyError {
	return &PolicyError{ReasonCode: code, Reason: fmt.Sprintf(format, args...)}
}
