package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"clipline/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("space", dir, 1); !result.Passed {
		t.Fatalf("expected a temp dir to have one free byte: %s", result.Detail)
	}
	// No filesystem has this much room.
	if result := CheckFreeSpace("space", dir, 1<<62); result.Passed {
		t.Fatal("expected failure for absurd minimum")
	}
	if result := CheckFreeSpace("space", dir, 0); !result.Passed {
		t.Fatal("expected pass when no minimum configured")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReportsMissingDirectories(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.UploadDir = filepath.Join(base, "missing-uploads")
	cfg.Paths.ProcessedDir = filepath.Join(base, "missing-processed")
	cfg.Paths.WorkDir = filepath.Join(base, "missing-work")
	cfg.Paths.DataDir = filepath.Join(base, "missing-data")
	cfg.LLM.APIKey = ""

	results := RunAll(context.Background(), &cfg)
	if AllPassed(results) {
		t.Fatal("expected failures for missing directories")
	}
	failures := 0
	for _, r := range results {
		if !r.Passed {
			failures++
		}
	}
	if failures < 4 {
		t.Fatalf("expected at least 4 directory failures, got %d: %v", failures, results)
	}
}

func TestRunAll_PassesOnHealthyLayout(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.UploadDir = base
	cfg.Paths.ProcessedDir = base
	cfg.Paths.WorkDir = base
	cfg.Paths.DataDir = base
	cfg.Media.MinFreeBytes = 1
	cfg.LLM.APIKey = ""
	// Point the tools at a stub that certainly exists.
	stub := filepath.Join(base, "tool")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg.Media.FFmpegCommand = stub
	cfg.Media.FFprobeCommand = stub
	cfg.Media.FaceDetectorCommand = stub

	results := RunAll(context.Background(), &cfg)
	if !AllPassed(results) {
		t.Fatalf("expected all checks to pass: %v", results)
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed(nil) {
		t.Fatal("empty set should pass")
	}
	if AllPassed([]Result{{Passed: true}, {Passed: false}}) {
		t.Fatal("expected failure to propagate")
	}
}
