//go:build mage

// Package main provides build targets for inkwell using Mage.
//
// Usage:
//
//	mage build    Compile inkwell and inkwelld to bin/
//	mage test     Run all tests
//	mage race     Run all tests with the race detector
//	mage lint     Run golangci-lint
//	mage install  Install both binaries to GOPATH/bin
//	mage clean    Remove build artifacts
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binaryDir = "bin"

var commands = map[string]string{
	"inkwell":  "./cmd/inkwell",
	"inkwelld": "./cmd/inkwelld",
}

// version is taken from git when available so `inkwell version` is useful.
func version() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(out) == "" {
		return "dev"
	}
	return strings.TrimSpace(out)
}

func ldflags() string {
	return "-X main.version=" + version()
}

// Build compiles both binaries to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	for name, pkg := range commands {
		if err := sh.RunV("go", "build", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, name), pkg); err != nil {
			return err
		}
	}
	return nil
}

// Test runs every package's tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs the tests with the race detector.
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Install installs both binaries into GOPATH/bin.
func Install() error {
	mg.Deps(Test)
	for _, pkg := range commands {
		if err := sh.RunV("go", "install", "-ldflags", ldflags(), pkg); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}
