package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ytharvest/internal/config"
	"ytharvest/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	fake       *testsupport.FakeYouTube
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("YTHARVEST_REDIS_URL", "")
	t.Setenv("NTFY_TOPIC", "")

	fake := testsupport.NewFakeYouTube(t)
	fake.Searches = [][]string{{"A", "X", "C"}}
	fake.Channels = map[string]testsupport.FakeChannel{
		"A": {Title: "Alpha", Subscribers: "1500", Videos: "0", Views: "10"},
		"C": {Title: "Charlie", Subscribers: "3500", Videos: "9", Views: "30", Uploads: "UU_C"},
		"X": {Title: "Too small", Subscribers: "5", Uploads: "UU_X"},
	}
	fake.Playlists = map[string][]string{"UU_C": {"vc"}}
	fake.Videos = map[string]testsupport.FakeVideo{
		"vc": {
			Title:       "Ten tips?",
			Description: "#howto",
			Duration:    "PT1M",
			PublishedAt: "2024-01-17T08:00:00Z",
			Views:       "42",
		},
	}

	opts = append([]testsupport.ConfigOption{testsupport.WithYouTubeServer(fake), testsupport.WithTarget(2, 1)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, fake: fake, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	fullArgs := args
	if configPath != "" {
		fullArgs = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(fullArgs)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
