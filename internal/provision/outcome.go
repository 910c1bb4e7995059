package provision

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// Status classifies the result of an ensure-style operation. The
// operations only classify; the Runner decides whether AlreadyExists
// or Failed stops the pipeline.
type Status int

const (
	// Created means the resource was created by this call.
	Created Status = iota
	// AlreadyExists means the provider reported the resource as
	// already present. Treated as success for orchestration.
	AlreadyExists
	// Failed means the call failed for a reason other than the
	// resource already existing.
	Failed
)

// Outcome is the per-operation result: a status plus the underlying
// error when the status is not Created.
type Outcome struct {
	Status Status
	Err    error
}

// Ok reports whether the resource is usable after the call.
func (o Outcome) Ok() bool {
	return o.Status == Created || o.Status == AlreadyExists
}

func (o Outcome) String() string {
	switch o.Status {
	case Created:
		return "created"
	case AlreadyExists:
		return "already exists"
	default:
		return "failed"
	}
}

// classify maps an API error onto an Outcome. codes lists the
// provider error codes meaning "resource already exists"; for services
// that only surface message text the match falls back to a substring
// check on "AlreadyExists".
func classify(err error, codes ...string) Outcome {
	if err == nil {
		return Outcome{Status: Created}
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		for _, code := range codes {
			if ae.ErrorCode() == code {
				return Outcome{Status: AlreadyExists, Err: err}
			}
		}
	}
	if strings.Contains(err.Error(), "AlreadyExists") {
		return Outcome{Status: AlreadyExists, Err: err}
	}

	return Outcome{Status: Failed, Err: err}
}
