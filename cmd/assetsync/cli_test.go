package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assetsync/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T, backend string) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"AWS_BUCKET_NAME", "AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY"} {
		t.Setenv(key, "")
	}

	configPath := filepath.Join(base, "assetsync.toml")
	content := fmt.Sprintf(`[paths]
root = %q

[store]
backend = %q
public_base_url = "https://cdn.example.com"

[logging]
level = "error"

[[variants]]
name = "mobile"
width = 200
`, base, backend)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{baseDir: base, configPath: configPath}
}

func (e *cliTestEnv) inbox(name string) string {
	return filepath.Join(e.baseDir, "content", "uploads", "_inbox", name)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestPublishRecordsHistoryAndMirror(t *testing.T) {
	env := setupCLITestEnv(t, "dir")
	testsupport.WriteJPEG(t, env.inbox("My Photo.JPG"), 300, 150)
	testsupport.WriteFile(t, env.inbox("Price List.csv"), 64)

	out, _, err := runCLI(t, []string{"publish"}, env.configPath)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	requireContains(t, out, "Successfully processed and uploaded 2 out of 2 files.")

	out, _, err = runCLI(t, []string{"records"}, env.configPath)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	requireContains(t, out, "my-photo")
	requireContains(t, out, "300x150")
	requireContains(t, out, "https://cdn.example.com/static/price-list.csv")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "publish")
	requireContains(t, out, "completed")
	requireContains(t, out, "2/2")

	out, _, err = runCLI(t, []string{"mirror"}, env.configPath)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	requireContains(t, out, "Mirrored 1 images")
	if _, err := os.Stat(filepath.Join(env.baseDir, "assets", "s3-images", "my-photo.png")); err != nil {
		t.Fatalf("mirrored image missing: %v", err)
	}

	out, _, err = runCLI(t, []string{"mirror"}, env.configPath)
	if err != nil {
		t.Fatalf("second mirror: %v", err)
	}
	requireContains(t, out, "Mirrored 0 images")
}

func TestPublishDryRunNeedsNoBucket(t *testing.T) {
	env := setupCLITestEnv(t, "s3")
	testsupport.WritePNG(t, env.inbox("logo.png"), 120, 120)

	if _, _, err := runCLI(t, []string{"publish"}, env.configPath); err == nil {
		t.Fatal("expected publish without a bucket to fail")
	}

	out, _, err := runCLI(t, []string{"publish", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("publish --dry-run: %v", err)
	}
	requireContains(t, out, "1 out of 1")
	requireContains(t, out, "Dry run")
	if _, err := os.Stat(filepath.Join(env.baseDir, ".assetsync", "dry-run", "logo_w200.png")); err != nil {
		t.Fatalf("dry-run variant missing: %v", err)
	}
}

func TestPublishWithEmptyInbox(t *testing.T) {
	env := setupCLITestEnv(t, "dir")
	out, _, err := runCLI(t, []string{"publish"}, env.configPath)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	requireContains(t, out, "No valid files to process.")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, "dir")

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Variants: 1")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestConfigValidateRemoteRequiresBucket(t *testing.T) {
	env := setupCLITestEnv(t, "s3")
	if _, _, err := runCLI(t, []string{"config", "validate", "--remote"}, env.configPath); err == nil {
		t.Fatal("expected --remote validation to fail without a bucket")
	}
}

func TestStatusOffline(t *testing.T) {
	env := setupCLITestEnv(t, "dir")
	testsupport.WriteFile(t, env.inbox("draft.pdf"), 2048)

	out, _, err := runCLI(t, []string{"status", "--offline"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Directories ==")
	requireContains(t, out, "1 files, 2.0 KiB")
	requireContains(t, out, "mobile")
	requireContains(t, out, "<uid>_w200.<ext>")
}

func TestHistoryUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t, "dir")
	if _, _, err := runCLI(t, []string{"history", "does-not-exist"}, env.configPath); err == nil {
		t.Fatal("expected an error for an unknown run id")
	}
}
