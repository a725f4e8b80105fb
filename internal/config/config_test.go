package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "camview.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Endpoint != defaultEndpoint {
		t.Fatalf("expected endpoint %q, got %q", defaultEndpoint, cfg.App.Endpoint)
	}
	if cfg.App.Namespace != "/" {
		t.Fatalf("expected namespace /, got %q", cfg.App.Namespace)
	}
	if cfg.App.NoticeTimeout != 3*time.Second {
		t.Fatalf("expected 3s notice timeout, got %s", cfg.App.NoticeTimeout)
	}
	if cfg.App.NoticeCapacity != 0 || cfg.App.Width != 0 || cfg.App.Height != 0 || cfg.App.ShowFooter {
		t.Fatalf("unexpected non-zero defaults: %#v", cfg.App)
	}
	if cfg.Logging.Trace || cfg.Logging.FilePath != "" {
		t.Fatalf("unexpected logging defaults: %#v", cfg.Logging)
	}
	if cfg.Flags["notice-timeout"] != "3s" {
		t.Fatalf("expected flags map to carry notice-timeout, got %v", cfg.Flags)
	}
}

func TestLoadArgsFlags(t *testing.T) {
	args := []string{
		"--endpoint", "http://hub:9000",
		"--notice-timeout", "500ms",
		"--notice-capacity", "4",
		"--width", "100",
		"--height", "30",
		"--footer",
		"--trace",
		"--log-file", "trace.log",
	}
	cfg, err := LoadArgs(args, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Endpoint != "http://hub:9000" {
		t.Fatalf("expected endpoint from flag, got %q", cfg.App.Endpoint)
	}
	if cfg.App.NoticeTimeout != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %s", cfg.App.NoticeTimeout)
	}
	if cfg.App.NoticeCapacity != 4 || cfg.App.Width != 100 || cfg.App.Height != 30 || !cfg.App.ShowFooter {
		t.Fatalf("unexpected app config %#v", cfg.App)
	}
	if !cfg.Logging.Trace || cfg.Logging.FilePath != "trace.log" {
		t.Fatalf("unexpected logging config %#v", cfg.Logging)
	}
	if len(cfg.Args) != len(args) {
		t.Fatalf("expected args to be recorded, got %v", cfg.Args)
	}
}

func TestLoadArgsEnvironmentFallback(t *testing.T) {
	env := []string{
		"CAMVIEW_ENDPOINT=hub.local:8080",
		"CAMVIEW_WIDTH=90",
		"CAMVIEW_FOOTER=true",
		"CAMVIEW_NOTICE_TIMEOUT=2s",
	}
	cfg, err := LoadArgs([]string{"--width", "70"}, env)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Endpoint != "hub.local:8080" {
		t.Fatalf("expected endpoint from env, got %q", cfg.App.Endpoint)
	}
	if cfg.App.Width != 70 {
		t.Fatalf("expected flag to win over env, got width %d", cfg.App.Width)
	}
	if !cfg.App.ShowFooter {
		t.Fatalf("expected footer from env")
	}
	if cfg.App.NoticeTimeout != 2*time.Second {
		t.Fatalf("expected 2s from env, got %s", cfg.App.NoticeTimeout)
	}
}

func TestLoadArgsInvalidEnvFallsBack(t *testing.T) {
	cfg, err := LoadArgs(nil, []string{"CAMVIEW_HEIGHT=tall", "CAMVIEW_TRACE=maybe"})
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Height != 0 || cfg.Logging.Trace {
		t.Fatalf("expected defaults for unparseable env, got %#v %#v", cfg.App, cfg.Logging)
	}
}

func TestLoadArgsConfigFile(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"endpoint: ws://camera-hub:8080",
		"namespace: /cams",
		"notice-timeout: 1500",
		"notice-capacity: 3",
		"width: 120",
		"footer: true",
	}, "\n"))
	env := []string{"CAMVIEW_CONFIG=" + path, "CAMVIEW_WIDTH=80"}
	cfg, err := LoadArgs([]string{"--namespace", "/override"}, env)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.File != path {
		t.Fatalf("expected config file %q, got %q", path, cfg.File)
	}
	if cfg.App.Endpoint != "ws://camera-hub:8080" {
		t.Fatalf("expected endpoint from file, got %q", cfg.App.Endpoint)
	}
	if cfg.App.Namespace != "/override" {
		t.Fatalf("expected flag to win over file, got %q", cfg.App.Namespace)
	}
	if cfg.App.Width != 80 {
		t.Fatalf("expected env to win over file, got %d", cfg.App.Width)
	}
	if cfg.App.NoticeTimeout != 1500*time.Millisecond {
		t.Fatalf("expected bare number read as milliseconds, got %s", cfg.App.NoticeTimeout)
	}
	if cfg.App.NoticeCapacity != 3 || !cfg.App.ShowFooter {
		t.Fatalf("unexpected app config %#v", cfg.App)
	}
}

func TestLoadArgsConfigFileErrors(t *testing.T) {
	unknown := writeConfig(t, "socket: /tmp/x\n")
	if _, err := LoadArgs([]string{"--config", unknown}, nil); err == nil || !strings.Contains(err.Error(), "unknown setting") {
		t.Fatalf("expected unknown setting error, got %v", err)
	}
	badValue := writeConfig(t, "width: wide\n")
	if _, err := LoadArgs([]string{"--config", badValue}, nil); err == nil {
		t.Fatalf("expected error for invalid width")
	}
	if _, err := LoadArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadArgsValidation(t *testing.T) {
	cases := [][]string{
		{"--width", "-1"},
		{"--height", "-5"},
		{"--notice-capacity", "-2"},
		{"--endpoint", " "},
		{"stray"},
	}
	for _, args := range cases {
		if _, err := LoadArgs(args, nil); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestLoadArgsHelp(t *testing.T) {
	_, err := LoadArgs([]string{"--help"}, nil)
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("expected ErrHelp, got %v", err)
	}
	if !strings.Contains(Usage(), "--notice-timeout") {
		t.Fatalf("expected usage to list notice-timeout")
	}
}

func TestValidateNamespace(t *testing.T) {
	cfg, err := LoadArgs([]string{"--namespace", "cams"}, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected namespace without leading slash to be rejected")
	}
	cfg.App.Namespace = "/cams"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
