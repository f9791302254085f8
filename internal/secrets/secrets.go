// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files
// and carries them per request. Each file in the directory represents one
// secret: the filename is the key name and the trimmed file contents are the
// value.
//
// Supported key files: tavily-api-key, openai-api-key, anthropic-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Known credential keys.
const (
	KeyTavily    = "tavily-api-key"
	KeyOpenAI    = "openai-api-key"
	KeyAnthropic = "anthropic-api-key"
)

// envFallbacks maps credential keys to environment variables consulted when
// the key has no file.
var envFallbacks = map[string]string{
	KeyTavily:    "TAVILY_API_KEY",
	KeyOpenAI:    "OPENAI_API_KEY",
	KeyAnthropic: "ANTHROPIC_API_KEY",
}

// Credentials maps credential keys to values. A Credentials value is built
// for one request and passed down explicitly; nothing in this module keeps
// it in package state.
type Credentials map[string]string

// Get returns the value for key, or "" when absent.
func (c Credentials) Get(key string) string {
	return c[key]
}

// Has reports whether key has a non-empty value.
func (c Credentials) Has(key string) bool {
	return strings.TrimSpace(c[key]) != ""
}

// Keys returns the names of all present credentials, sorted.
func (c Credentials) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MissingError lists credentials a caller required but did not supply.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing credentials: %s", strings.Join(e.Keys, ", "))
}

// Require returns a *MissingError naming every key without a value.
func (c Credentials) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if !c.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (Credentials, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	creds := make(Credentials)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			creds[name] = value
		}
	}

	return creds, nil
}

// WithEnv returns a copy of c where every known key lacking a value is
// filled from its environment variable, if set. lookup is usually os.LookupEnv.
func (c Credentials) WithEnv(lookup func(string) (string, bool)) Credentials {
	out := make(Credentials, len(c)+len(envFallbacks))
	for k, v := range c {
		out[k] = v
	}
	for key, env := range envFallbacks {
		if out.Has(key) {
			continue
		}
		if v, ok := lookup(env); ok && strings.TrimSpace(v) != "" {
			out[key] = strings.TrimSpace(v)
		}
	}
	return out
}
