package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/foteam/sessionstore/internal/core/domain"
	"github.com/foteam/sessionstore/internal/storage/codec"
)

const (
	liveID  = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	staleID = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// writeRecord places a record file in dir with the given idle age and
// modification age.
func writeRecord(t *testing.T, dir, id string, idle, modAge time.Duration, cart []any) {
	t.Helper()
	now := time.Now()
	rec := domain.DefaultRecord(now.Add(-idle))
	rec[domain.KeyCart] = cart
	path := filepath.Join(dir, "sess_"+id)
	if err := os.WriteFile(path, codec.MustEncode(rec), 0o600); err != nil {
		t.Fatalf("write record: %v", err)
	}
	mt := now.Add(-modAge)
	if err := os.Chtimes(path, mt, mt); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func newSessionDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeRecord(t, dir, liveID, time.Minute, time.Minute, []any{
		map[string]any{"id": int64(7), "price": 4.5},
	})
	writeRecord(t, dir, staleID, 2*time.Hour, 48*time.Hour, []any{})
	return dir
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = func(*cli.Context, error) {}

	argv := append([]string{"foteam-sessctl", "--dir", dir}, args...)
	err := app.Run(argv)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func fileExists(dir, id string) bool {
	_, err := os.Stat(filepath.Join(dir, "sess_"+id))
	return err == nil
}

func TestList(t *testing.T) {
	dir := newSessionDir(t)

	res := run(t, dir, "", "list")
	if res.err != nil {
		t.Fatalf("list: %v", res.err)
	}
	if !strings.Contains(res.stdout, "ID") || !strings.Contains(res.stdout, "STALE") {
		t.Errorf("missing headers:\n%s", res.stdout)
	}
	if !strings.Contains(res.stdout, liveID[:16]+"...") {
		t.Errorf("expected truncated id:\n%s", res.stdout)
	}
	if !strings.Contains(res.stdout, "Total: 2 sessions") {
		t.Errorf("missing footer:\n%s", res.stdout)
	}

	res = run(t, dir, "", "--wide", "list")
	if !strings.Contains(res.stdout, liveID) || !strings.Contains(res.stdout, "RENEWED") {
		t.Errorf("wide output should show full ids and wide columns:\n%s", res.stdout)
	}
}

func TestList_StaleJSON(t *testing.T) {
	dir := newSessionDir(t)

	res := run(t, dir, "", "-o", "json", "list", "--stale")
	if res.err != nil {
		t.Fatalf("list: %v", res.err)
	}
	var got []struct {
		ID    string `json:"id"`
		Stale bool   `json:"stale"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("decode %q: %v", res.stdout, err)
	}
	if len(got) != 1 || got[0].ID != staleID || !got[0].Stale {
		t.Errorf("got %+v, want only the stale record", got)
	}
}

func TestList_MissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	res := run(t, dir, "", "list")
	if res.err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("the directory should not have been created")
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	res := run(t, t.TempDir(), "", "-o", "xml", "list")
	if res.err == nil {
		t.Fatal("expected error for unknown output format")
	}
}

func TestInspect(t *testing.T) {
	dir := newSessionDir(t)
	before, _ := os.ReadFile(filepath.Join(dir, "sess_"+staleID))

	res := run(t, dir, "", "-o", "json", "inspect", liveID)
	if res.err != nil {
		t.Fatalf("inspect: %v", res.err)
	}
	var got struct {
		Record struct {
			ID        string `json:"id"`
			CartItems int    `json:"cart_items"`
		} `json:"record"`
		Attributes map[string]any `json:"attributes"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Record.ID != liveID || got.Record.CartItems != 1 {
		t.Errorf("record = %+v", got.Record)
	}
	if got.Attributes[domain.KeyInitiated] != true {
		t.Errorf("attributes = %v", got.Attributes)
	}

	// Inspecting a stale record must not reset it.
	if res := run(t, dir, "", "inspect", staleID); res.err != nil {
		t.Fatalf("inspect stale: %v", res.err)
	}
	after, _ := os.ReadFile(filepath.Join(dir, "sess_"+staleID))
	if !bytes.Equal(before, after) {
		t.Error("inspect modified the record")
	}
}

func TestInspect_Errors(t *testing.T) {
	dir := newSessionDir(t)

	tests := []struct {
		name string
		args []string
		want *domain.DomainError
	}{
		{"not found", []string{"inspect", "cccc"}, domain.ErrSessionNotFound},
		{"invalid id", []string{"inspect", "../etc"}, domain.ErrInvalidSessionID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, dir, "", tt.args...)
			if !errors.Is(res.err, tt.want) {
				t.Errorf("err = %v, want %v", res.err, tt.want)
			}
		})
	}

	if res := run(t, dir, "", "inspect"); res.err == nil {
		t.Error("expected error without an id")
	}
}

func TestDestroy(t *testing.T) {
	dir := newSessionDir(t)

	res := run(t, dir, "n\n", "destroy", liveID)
	if res.err != nil {
		t.Fatalf("destroy: %v", res.err)
	}
	if !fileExists(dir, liveID) {
		t.Fatal("declined destroy removed the record")
	}
	if !strings.Contains(res.stderr, "aborted") {
		t.Errorf("stderr = %q", res.stderr)
	}

	res = run(t, dir, "yes\n", "destroy", liveID)
	if res.err != nil {
		t.Fatalf("destroy: %v", res.err)
	}
	if fileExists(dir, liveID) {
		t.Error("confirmed destroy kept the record")
	}

	res = run(t, dir, "", "destroy", "--force", staleID)
	if res.err != nil {
		t.Fatalf("destroy --force: %v", res.err)
	}
	if fileExists(dir, staleID) {
		t.Error("forced destroy kept the record")
	}

	res = run(t, dir, "", "destroy", "-f", "bad/id")
	if !errors.Is(res.err, domain.ErrInvalidSessionID) {
		t.Errorf("err = %v, want invalid id", res.err)
	}
}

func TestValidate(t *testing.T) {
	dir := newSessionDir(t)

	res := run(t, dir, "", "validate", liveID)
	if res.err != nil {
		t.Fatalf("validate: %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != "valid" {
		t.Errorf("stdout = %q", res.stdout)
	}

	res = run(t, dir, "", "-o", "json", "validate", "not!valid")
	if res.err == nil {
		t.Fatal("expected error for invalid id")
	}
	var got validateResult
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Valid || got.ID != "not!valid" {
		t.Errorf("got %+v", got)
	}
}

func TestGC(t *testing.T) {
	dir := newSessionDir(t)

	res := run(t, dir, "", "gc", "--max-lifetime", "24h", "--dry-run")
	if res.err != nil {
		t.Fatalf("gc dry run: %v", res.err)
	}
	if !strings.Contains(res.stdout, staleID) || strings.Contains(res.stdout, liveID) {
		t.Errorf("dry run candidates:\n%s", res.stdout)
	}
	if !fileExists(dir, staleID) {
		t.Fatal("dry run deleted a record")
	}

	res = run(t, dir, "", "-o", "json", "gc", "--max-lifetime", "24h")
	if res.err != nil {
		t.Fatalf("gc: %v", res.err)
	}
	var got gcResult
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Deleted != 1 || got.DryRun || got.MaxLifetime != "24h0m0s" {
		t.Errorf("got %+v", got)
	}
	if fileExists(dir, staleID) || !fileExists(dir, liveID) {
		t.Error("gc removed the wrong records")
	}

	if res := run(t, dir, "", "gc", "--max-lifetime", "0s"); res.err == nil {
		t.Error("expected error for zero max-lifetime")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abc", false); got != "abc" {
		t.Errorf("shortID(abc) = %q", got)
	}
	if got := shortID(liveID, false); got != liveID[:16]+"..." {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID(liveID, true); got != liveID {
		t.Errorf("shortID wide = %q", got)
	}
}
