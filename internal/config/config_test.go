package config_test

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/coverart-fetcher/internal/config"
)

func TestWithDefault(t *testing.T) {
	testURLs := []url.URL{
		{Scheme: "https", Host: "music.example.com", Path: "/album/1"},
	}

	cfg := config.WithDefault(testURLs)

	if cfg == nil {
		t.Fatal("WithDefault() returned nil")
	}

	builtCfg, err := cfg.Build()

	if err != nil {
		t.Errorf("should not have any error, got %v", err)
	}

	if len(builtCfg.RequestURLs()) != 1 {
		t.Errorf("expected 1 request URL, got %d", len(builtCfg.RequestURLs()))
	}

	if builtCfg.FrontOnly() {
		t.Error("expected FrontOnly false by default")
	}
	if builtCfg.SkipMaximisation() {
		t.Error("expected SkipMaximisation false by default")
	}

	if builtCfg.BaseDelay() != time.Second {
		t.Errorf("expected BaseDelay 1s, got %v", builtCfg.BaseDelay())
	}
	if builtCfg.Jitter() != 500*time.Millisecond {
		t.Errorf("expected Jitter 500ms, got %v", builtCfg.Jitter())
	}
	if builtCfg.MaxAttempt() != 3 {
		t.Errorf("expected MaxAttempt 3, got %d", builtCfg.MaxAttempt())
	}
	if builtCfg.Timeout() != 30*time.Second {
		t.Errorf("expected Timeout 30s, got %v", builtCfg.Timeout())
	}

	if builtCfg.UserAgent() != "coverart-fetcher/1.0" {
		t.Errorf("expected UserAgent 'coverart-fetcher/1.0', got '%s'", builtCfg.UserAgent())
	}
	if builtCfg.OutputDir() != "covers" {
		t.Errorf("expected OutputDir 'covers', got '%s'", builtCfg.OutputDir())
	}
	if builtCfg.DryRun() != false {
		t.Errorf("expected DryRun false, got %v", builtCfg.DryRun())
	}
	if builtCfg.HashAlgo() != "blake3" {
		t.Errorf("expected HashAlgo 'blake3', got '%s'", builtCfg.HashAlgo())
	}
}

func TestBuildRejectsEmptyRequestURLs(t *testing.T) {
	_, err := config.WithDefault(nil).Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildRejectsNonHTTPScheme(t *testing.T) {
	_, err := config.WithDefault([]url.URL{
		{Scheme: "ftp", Host: "example.org"},
	}).Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildRejectsUnknownHashAlgo(t *testing.T) {
	_, err := config.WithDefault([]url.URL{
		{Scheme: "https", Host: "example.org"},
	}).WithHashAlgo("md5").Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuilderOverrides(t *testing.T) {
	builtCfg, err := config.WithDefault([]url.URL{
		{Scheme: "https", Host: "music.example.com"},
	}).
		WithFrontOnly(true).
		WithSkipMaximisation(true).
		WithImageTypes([]string{"front", "booklet"}).
		WithComment("promo scan").
		WithBaseDelay(2 * time.Second).
		WithUserAgent("custom-agent/2.0").
		WithOutputDir("artdir").
		WithDryRun(true).
		Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if !builtCfg.FrontOnly() {
		t.Error("expected FrontOnly true")
	}
	if !builtCfg.SkipMaximisation() {
		t.Error("expected SkipMaximisation true")
	}
	if len(builtCfg.ImageTypes()) != 2 {
		t.Errorf("expected 2 image types, got %v", builtCfg.ImageTypes())
	}
	if builtCfg.Comment() != "promo scan" {
		t.Errorf("expected Comment 'promo scan', got '%s'", builtCfg.Comment())
	}
	if builtCfg.BaseDelay() != 2*time.Second {
		t.Errorf("expected BaseDelay 2s, got %v", builtCfg.BaseDelay())
	}
	if builtCfg.UserAgent() != "custom-agent/2.0" {
		t.Errorf("expected UserAgent 'custom-agent/2.0', got '%s'", builtCfg.UserAgent())
	}
	if builtCfg.OutputDir() != "artdir" {
		t.Errorf("expected OutputDir 'artdir', got '%s'", builtCfg.OutputDir())
	}
	if !builtCfg.DryRun() {
		t.Error("expected DryRun true")
	}
}

func TestWithConfigFile(t *testing.T) {
	content := `{
		"requestUrls": ["https://music.example.com/album/1"],
		"frontOnly": true,
		"userAgent": "file-agent/1.0",
		"outputDir": "from-file",
		"maxAttempt": 5
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if len(cfg.RequestURLs()) != 1 {
		t.Fatalf("expected 1 request URL, got %d", len(cfg.RequestURLs()))
	}
	if cfg.RequestURLs()[0].Host != "music.example.com" {
		t.Errorf("unexpected request URL host: %s", cfg.RequestURLs()[0].Host)
	}
	if !cfg.FrontOnly() {
		t.Error("expected FrontOnly true")
	}
	if cfg.UserAgent() != "file-agent/1.0" {
		t.Errorf("expected UserAgent 'file-agent/1.0', got '%s'", cfg.UserAgent())
	}
	if cfg.OutputDir() != "from-file" {
		t.Errorf("expected OutputDir 'from-file', got '%s'", cfg.OutputDir())
	}
	if cfg.MaxAttempt() != 5 {
		t.Errorf("expected MaxAttempt 5, got %d", cfg.MaxAttempt())
	}
	// Unset fields keep their defaults
	if cfg.BaseDelay() != time.Second {
		t.Errorf("expected default BaseDelay, got %v", cfg.BaseDelay())
	}
}

func TestWithConfigFileMissing(t *testing.T) {
	_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("expected ErrFileDoesNotExist, got %v", err)
	}
}

func TestWithConfigFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := config.WithConfigFile(path)
	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got %v", err)
	}
}
