// Package model defines the records newman persists: alerts raised when an
// operation fails.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Severity names accepted in Alert.Severity.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Alert is one error report forwarded to an alert sink.
type Alert struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	ErrorType    string    `json:"error_type,omitempty"`
	Namespace    string    `json:"namespace,omitempty"`
	Operation    string    `json:"operation,omitempty"`
	InvocationID string    `json:"invocation_id,omitempty"`
	Host         string    `json:"host,omitempty"`
}

// Validate checks the fields every stored alert needs.
func (a Alert) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if a.Message == "" {
		errs = append(errs, errors.New("message is required"))
	}
	if a.Timestamp.IsZero() {
		errs = append(errs, errors.New("timestamp is required"))
	}
	switch a.Severity {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
	default:
		errs = append(errs, fmt.Errorf("unknown severity %q", a.Severity))
	}
	return errors.Join(errs...)
}

// Target renders "namespace operation", or "" when the alert was not raised
// by an operation.
func (a Alert) Target() string {
	switch {
	case a.Namespace == "":
		return a.Operation
	case a.Operation == "":
		return a.Namespace
	}
	return a.Namespace + " " + a.Operation
}
