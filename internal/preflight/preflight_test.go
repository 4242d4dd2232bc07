package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"assetsync/internal/config"
	"assetsync/internal/testsupport"
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

func TestCheckCreatable_MissingUnderWritableAncestor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	result := CheckCreatable("test", path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckCreatable_AncestorIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckCreatable("test", filepath.Join(f, "child"))
	if result.Passed {
		t.Fatal("expected failure when the ancestor is a file")
	}
}

func TestCheckStoreConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if result := CheckStoreConfig(cfg); !result.Passed {
		t.Fatalf("dir backend should pass, got: %s", result.Detail)
	}
	cfg.Store.Backend = config.BackendS3
	cfg.Store.Bucket = ""
	if result := CheckStoreConfig(cfg); result.Passed {
		t.Fatal("s3 without bucket should fail")
	}
}

func TestCheckStore(t *testing.T) {
	store := testsupport.NewMemoryStore()
	if result := CheckStore(context.Background(), store); !result.Passed {
		t.Fatalf("missing probe key should count as reachable, got: %s", result.Detail)
	}
	store.FailGet(probeKey, errors.New("access denied"))
	if result := CheckStore(context.Background(), store); result.Passed {
		t.Fatal("expected failure for denied probe")
	}
}

func TestCheckStoreFromConfigDirBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := CheckStoreFromConfig(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestRunAllFreshProject(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg)
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}
