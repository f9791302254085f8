// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"

	"github.com/pdiddy/account-intel/pkg/types"
)

// The error taxonomy is shared with the search and synthesis packages and
// lives in pkg/types. These aliases let callers of the pipeline use
// errors.As without importing pkg/types.
type (
	ConfigurationError = types.ConfigurationError
	StageFailure       = types.StageFailure
	ParseFailure       = types.ParseFailure
)

// Error kinds used in metrics labels.
const (
	kindConfiguration = "configuration"
	kindStage         = "stage"
	kindParse         = "parse"
	kindCancelled     = "cancelled"
	kindOther         = "other"
)

// errorKind classifies err for metrics and logs.
func errorKind(err error) string {
	var (
		cfgErr   *ConfigurationError
		parseErr *ParseFailure
		stageErr *StageFailure
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return kindCancelled
	case errors.As(err, &cfgErr):
		return kindConfiguration
	case errors.As(err, &parseErr):
		return kindParse
	case errors.As(err, &stageErr):
		return kindStage
	}
	return kindOther
}
