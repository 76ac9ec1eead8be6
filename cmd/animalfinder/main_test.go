package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("MODEL_PATH", filepath.Join(dir, "models", "md.onnx"))
	t.Setenv("MODEL_URL", "")
	t.Setenv("DETECTOR_BACKEND", "opencv")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_DIR", "")
}

func TestRun_UsageErrors(t *testing.T) {
	folder := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"no folder", []string{"animalfinder"}},
		{"two folders", []string{"animalfinder", folder, folder}},
		{"bad mode", []string{"animalfinder", "--mode", "shuffle", folder}},
		{"unknown flag", []string{"animalfinder", "--recursive", folder}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			var stderr bytes.Buffer
			if code := run(context.Background(), tt.args, &stderr); code != exitUsage {
				t.Errorf("Expected exit code %d, got %d (output %q)", exitUsage, code, stderr.String())
			}
		})
	}
}

func TestRun_SortRejectsNonImages(t *testing.T) {
	isolateEnv(t)
	folder := t.TempDir()
	notes := filepath.Join(folder, "notes.txt")
	if err := os.WriteFile(notes, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"animalfinder", "--mode", "sort", folder}, &stderr)
	if code != exitFailure {
		t.Fatalf("Expected exit code %d, got %d", exitFailure, code)
	}
	if !strings.Contains(stderr.String(), notes) {
		t.Errorf("Expected %s in the error output, got %q", notes, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(folder, "animals")); !os.IsNotExist(err) {
		t.Error("No destination should be created when validation fails")
	}
}

func TestFlagsFirst(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"already ordered", []string{"af", "--mode", "sort", "dir"}, []string{"af", "--mode", "sort", "dir"}},
		{"flags after folder", []string{"af", "dir", "--mode", "sort", "--debug"}, []string{"af", "--mode", "sort", "--debug", "dir"}},
		{"equals form", []string{"af", "dir", "--mode=display"}, []string{"af", "--mode=display", "dir"}},
		{"after terminator", []string{"af", "--", "-odd-name"}, []string{"af", "--", "-odd-name"}},
		{"program only", []string{"af"}, []string{"af"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, flagsFirst(tt.in)); diff != "" {
				t.Errorf("flagsFirst mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_FlagsAfterFolder(t *testing.T) {
	isolateEnv(t)
	folder := t.TempDir()
	notes := filepath.Join(folder, "notes.txt")
	if err := os.WriteFile(notes, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Sort mode is only reached when --mode is honoured after FOLDER.
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"animalfinder", folder, "--mode", "sort"}, &stderr)
	if code != exitFailure {
		t.Fatalf("Expected exit code %d, got %d (output %q)", exitFailure, code, stderr.String())
	}
	if !strings.Contains(stderr.String(), notes) {
		t.Errorf("Expected %s in the error output, got %q", notes, stderr.String())
	}
}

func TestRun_DisplayEmptyFolder(t *testing.T) {
	isolateEnv(t)
	var stderr bytes.Buffer
	if code := run(context.Background(), []string{"animalfinder", t.TempDir()}, &stderr); code != exitOK {
		t.Errorf("Expected exit code %d, got %d (output %q)", exitOK, code, stderr.String())
	}
}

func TestRun_FatalError(t *testing.T) {
	isolateEnv(t)
	var stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing")
	if code := run(context.Background(), []string{"animalfinder", missing}, &stderr); code != exitFailure {
		t.Errorf("Expected exit code %d, got %d", exitFailure, code)
	}
}
