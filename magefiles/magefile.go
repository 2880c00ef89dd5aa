// Package main contains Mage build targets for pdf-tools developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "pdf-tools"
	cmdPkg  = "./cmd/pdf-tools"
)

// Default target to run when none is specified.
var Default = Build

// Build compiles the CLI binary into bin/. VERSION, when set, is stamped
// into "pdf-tools version".
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)

	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests, skipping network and Zotero integration tests.
func Test() error {
	return sh.RunV("go", "test", "-short", "./...")
}

// Integration runs the full test suite, including tests that need
// ZOTERO_API_KEY and ZOTERO_LIBRARY_ID.
func Integration() error {
	return sh.RunV("go", "test", "-count=1", "./...")
}

// Lint runs go vet, then the tests.
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

// Clean removes build output.
func Clean() error {
	fmt.Println("Removing", binDir)
	return sh.Rm(binDir)
}
