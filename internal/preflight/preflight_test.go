package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytharvest/internal/testsupport"
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
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
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

func TestCheckYouTube_OK(t *testing.T) {
	fake := testsupport.NewFakeYouTube(t)
	cfg := testsupport.NewConfig(t, testsupport.WithYouTubeServer(fake), testsupport.WithAPIKey("good-key"))

	result := CheckYouTube(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !fake.SawKey("good-key") {
		t.Fatal("expected the configured key to be sent")
	}
}

func TestCheckYouTube_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid.","errors":[{"reason":"keyInvalid"}]}}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.YouTube.BaseURL = srv.URL
	result := CheckYouTube(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for rejected key")
	}
	if !strings.Contains(result.Detail, "400") {
		t.Fatalf("expected status in detail, got: %s", result.Detail)
	}
}

func TestCheckYouTube_MissingKey(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	cfg := testsupport.NewConfig(t, testsupport.WithAPIKey(""))
	result := CheckYouTube(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func TestCheckRedis_Disabled(t *testing.T) {
	result := CheckRedis(context.Background(), "")
	if !result.Passed || result.Detail != "Disabled" {
		t.Fatalf("expected disabled pass, got: %+v", result)
	}
}

func TestCheckRedis_InvalidURL(t *testing.T) {
	result := CheckRedis(context.Background(), "not a url")
	if result.Passed {
		t.Fatal("expected failure for invalid url")
	}
}

func TestCheckNotifications(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if r := CheckNotifications(cfg); !r.Passed {
		t.Fatalf("unset topic should pass, got: %s", r.Detail)
	}
	cfg.Notifications.NtfyTopic = "ytharvest"
	if r := CheckNotifications(cfg); r.Passed {
		t.Fatal("bare topic name should fail")
	}
	cfg.Notifications.NtfyTopic = "https://ntfy.sh/ytharvest"
	if r := CheckNotifications(cfg); !r.Passed {
		t.Fatalf("full url should pass, got: %s", r.Detail)
	}
}

func TestRunAllDeduplicatesDirectories(t *testing.T) {
	fake := testsupport.NewFakeYouTube(t)
	cfg := testsupport.NewConfig(t, testsupport.WithYouTubeServer(fake))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got: %+v", failed)
	}
	// Both tables share the base directory.
	dirs := 0
	for _, r := range results {
		if strings.HasSuffix(r.Name, "directory") {
			dirs++
		}
	}
	if dirs != 3 {
		t.Fatalf("expected 3 distinct directories, got %d", dirs)
	}
}
