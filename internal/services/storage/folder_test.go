package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"animalfinder/internal/logger"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(filepath.Base(path)), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListFolder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.jpg", "a.jpg", "b.png"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "sub", "nested.jpg"))

	svc := NewFolderService(logger.NewNop())
	got, err := svc.ListFolder(dir)
	if err != nil {
		t.Fatalf("ListFolder failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.jpg"),
		filepath.Join(dir, "sub"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListFolder mismatch (-want +got):\n%s", diff)
	}
}

func TestListFolder_Errors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.jpg")
	touch(t, file)
	svc := NewFolderService(logger.NewNop())

	if _, err := svc.ListFolder(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for missing folder")
	}
	if _, err := svc.ListFolder(file); err == nil {
		t.Error("Expected error for a regular file")
	}
}

func TestCreateDestinations(t *testing.T) {
	dir := t.TempDir()
	svc := NewFolderService(logger.NewNop())

	dst, err := svc.CreateDestinations(dir)
	if err != nil {
		t.Fatalf("CreateDestinations failed: %v", err)
	}
	for _, d := range []string{dst.Animals, dst.NoAnimals} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s, got %v", d, err)
		}
	}
	if dst.Animals != filepath.Join(dir, "animals") || dst.NoAnimals != filepath.Join(dir, "no_animals") {
		t.Errorf("Unexpected destinations %+v", dst)
	}

	if _, err := svc.CreateDestinations(dir); !errors.Is(err, ErrDestinationExists) {
		t.Errorf("Expected ErrDestinationExists, got %v", err)
	}
}

func TestMove(t *testing.T) {
	dir := t.TempDir()
	svc := NewFolderService(logger.NewNop())
	dst, err := svc.CreateDestinations(dir)
	if err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(dir, "fox.jpg")
	touch(t, src)
	if err := svc.Move(src, dst.Animals); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("Source should be gone after move")
	}
	data, err := os.ReadFile(filepath.Join(dst.Animals, "fox.jpg"))
	if err != nil || string(data) != "fox.jpg" {
		t.Errorf("Moved file content mismatch: %q, %v", data, err)
	}
}

func TestMove_Failures(t *testing.T) {
	dir := t.TempDir()
	svc := NewFolderService(logger.NewNop())
	dst, err := svc.CreateDestinations(dir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("target exists", func(t *testing.T) {
		src := filepath.Join(dir, "dup.jpg")
		touch(t, src)
		touch(t, filepath.Join(dst.NoAnimals, "dup.jpg"))

		err := svc.Move(src, dst.NoAnimals)
		var moveErr *MoveError
		if !errors.As(err, &moveErr) || !errors.Is(err, os.ErrExist) {
			t.Fatalf("Expected MoveError wrapping ErrExist, got %v", err)
		}
		if _, err := os.Stat(src); err != nil {
			t.Error("Source must stay in place when the move fails")
		}
	})

	t.Run("missing source", func(t *testing.T) {
		err := svc.Move(filepath.Join(dir, "ghost.jpg"), dst.Animals)
		var moveErr *MoveError
		if !errors.As(err, &moveErr) {
			t.Fatalf("Expected MoveError, got %v", err)
		}
	})
}
