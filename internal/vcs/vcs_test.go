package vcs

import (
	"context"
	"testing"

	"github.com/ragsmith/ragsmith/internal/testutil"
)

func TestCheckMissingGitIsNoRepository(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	status, err := Check(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status != StatusNoRepository {
		t.Fatalf("status = %v, want StatusNoRepository", status)
	}
}

func TestCheckOutsideRepositoryIsNoRepository(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "git", "#!/bin/sh\necho 'fatal: not a git repository (or any of the parent directories): .git' >&2\nexit 128\n")
	t.Setenv("PATH", dir)

	status, err := Check(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status != StatusNoRepository {
		t.Fatalf("status = %v, want StatusNoRepository", status)
	}
}

func TestCheckCleanTree(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "git", "#!/bin/sh\nexit 0\n")
	t.Setenv("PATH", dir)

	status, err := Check(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status != StatusClean {
		t.Fatalf("status = %v, want StatusClean", status)
	}
}

func TestCheckDirtyTree(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "git", "#!/bin/sh\necho ' M src/rag/index.ts'\nexit 0\n")
	t.Setenv("PATH", dir)

	status, err := Check(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status != StatusDirty {
		t.Fatalf("status = %v, want StatusDirty", status)
	}
}

func TestCheckSurfacesUnexpectedFailure(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "git", "#!/bin/sh\necho 'fatal: index file corrupt' >&2\nexit 128\n")
	t.Setenv("PATH", dir)

	if _, err := Check(context.Background(), t.TempDir()); err == nil {
		t.Fatalf("expected error for corrupt repository")
	}
}
