//go:build mage

// Package main contains Mage build targets for account-intel developer tooling.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "account-intel"
	cmdPkg  = "./cmd/account-intel"

	// buildTags enables the SQLite FTS5 extension used by the history store.
	buildTags = "sqlite_fts5"

	secretsDir = ".secrets"
	configFile = "account-intel.yaml"
)

// secretFiles lists the credential files the CLI looks for.
var secretFiles = []string{"tavily-api-key", "openai-api-key", "anthropic-api-key"}

const sampleConfig = `# account-intel configuration. Every key can also be set through an
# ACCOUNT_INTEL_* environment variable (e.g. ACCOUNT_INTEL_SEARCH_BUDGET).
search:
  budget: 8
  max_results: 5
  depth: advanced
  timeout: 20s
models:
  provider: openai
synthesis:
  timeout: 120s
history:
  path: account-intel.db
`

// Init creates the secrets directory and a starter config file. Existing
// files are left alone.
func Init() error {
	if err := os.MkdirAll(secretsDir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", secretsDir, err)
	}
	fmt.Println("  ", secretsDir)
	for _, name := range secretFiles {
		path := filepath.Join(secretsDir, name)
		if _, err := os.Stat(path); err == nil {
			fmt.Println("  ", path, "(exists)")
			continue
		}
		fmt.Println("  ", path, "(missing: write the API key here)")
	}

	if _, err := os.Stat(configFile); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(configFile, []byte(sampleConfig), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", configFile, err)
		}
		fmt.Println("  ", configFile)
	}
	fmt.Println("Project initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-tags", buildTags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the build tags the module needs.
func Test() error {
	if err := sh.RunV("go", "test", "-tags", buildTags, "./..."); err != nil {
		return fmt.Errorf("go test: %w", err)
	}
	return nil
}

// Research builds the CLI and prints a summary report for company.
func Research(company string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "research", "--format", "summary", company)
}

// History lists the most recent saved reports.
func History() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "history", "list")
}

// Stats prints project metrics: Go production/test LOC and documentation
// word count for the Markdown files at the repository root.
func Stats() error {
	prod, tests, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", tests)
	fmt.Printf("Words (documentation):          %d\n", docWords)
	return nil
}

// skipDir reports whether a directory is outside the module's own sources:
// hidden directories, underscore-prefixed reference trees, and build output.
func skipDir(path string, d fs.DirEntry) bool {
	name := d.Name()
	return path != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir)
}

// countGoLines returns the non-blank line counts of production and test Go
// files under root.
func countGoLines(root string) (prod, tests int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(path, d) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countNonBlank(path)
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			tests += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, tests, err
}

func countNonBlank(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}

// countDocWords counts whitespace-separated words in the .md files directly
// under root.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
