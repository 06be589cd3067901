package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("running %v: %v\noutput: %s", args, err, out.String())
	}
	return out.String()
}

func TestPutGetScanRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mydb_data")

	runCLI(t, "put", "--data-dir", dir, "users", "1", `{"name":"ada"}`)
	runCLI(t, "put", "--data-dir", dir, "users", "2", `{"name":"grace"}`)

	out := runCLI(t, "scan", "--data-dir", dir, "users")
	if !bytes.Contains([]byte(out), []byte("ada")) || !bytes.Contains([]byte(out), []byte("grace")) {
		t.Fatalf("scan output missing records: %s", out)
	}
}

func TestPutThenUpdateSameKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mydb_data")

	runCLI(t, "put", "--data-dir", dir, "users", "1", `{"name":"ada"}`)
	runCLI(t, "put", "--data-dir", dir, "users", "1", `{"name":"ada lovelace"}`)

	out := runCLI(t, "get", "--data-dir", dir, "users", "1")
	if !bytes.Contains([]byte(out), []byte("ada lovelace")) {
		t.Fatalf("expected updated value, got %s", out)
	}
}

func TestDbCreateListDrop(t *testing.T) {
	base := filepath.Join(t.TempDir(), "databases")

	runCLI(t, "db", "--base-dir", base, "create", "shop")
	out := runCLI(t, "db", "--base-dir", base, "list")
	if !bytes.Contains([]byte(out), []byte("shop")) {
		t.Fatalf("expected shop in list output, got %s", out)
	}

	runCLI(t, "db", "--base-dir", base, "drop", "shop")
	out = runCLI(t, "db", "--base-dir", base, "list")
	if bytes.Contains([]byte(out), []byte("shop")) {
		t.Fatalf("expected shop removed from list output, got %s", out)
	}
}
