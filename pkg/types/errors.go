// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Pipeline stages named in StageFailure.
const (
	StageSearch    = "search"
	StageEvidence  = "evidence"
	StageSynthesis = "synthesis"
)

// ConfigurationError reports a missing credential or unusable setting. It is
// raised before any external call is made.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Msg, e.Err)
	}
	return "configuration error: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// StageFailure reports a transport or provider error that ended a stage.
// It is fatal to the whole request.
type StageFailure struct {
	Stage string
	Err   error
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageFailure) Unwrap() error { return e.Err }

// ParseFailure reports that the synthesis stage answered but its output was
// not a JSON object. It is distinct from StageFailure so callers can tell
// "no answer" from "unusable answer". Excerpt holds the start of the output.
type ParseFailure struct {
	Err     error
	Excerpt string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("synthesis output is not valid JSON: %v", e.Err)
}

func (e *ParseFailure) Unwrap() error { return e.Err }
