// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/pdiddy/account-intel/pkg/types"
)

const excerptLen = 200

// ParseReport decodes the synthesis stage's answer into a loose JSON object.
// A surrounding markdown code fence (``` or ```json) is removed first. Any
// decode failure, or a top-level value that is not an object, is returned
// as a *types.ParseFailure.
func ParseReport(text string) (map[string]any, error) {
	body := StripFences(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, &types.ParseFailure{Err: err, Excerpt: excerpt(text)}
	}
	if raw == nil {
		return nil, &types.ParseFailure{Err: errors.New("top-level value is null"), Excerpt: excerpt(text)}
	}
	return raw, nil
}

// StripFences removes a markdown code fence wrapping s, if any.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line, including any language tag.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "```"), "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= excerptLen {
		return s
	}
	return s[:excerptLen] + "..."
}
