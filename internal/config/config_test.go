package config_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/derickschaefer/aquarius/internal/config"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

func rate(v float64) *float64 { return &v }

// chdir switches the working directory to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// writeConfig writes a config.json into dir and changes the working directory
// to dir for the duration of the test.
func writeConfig(t *testing.T, dir string, f config.File) {
	t.Helper()
	if err := config.WriteFile(filepath.Join(dir, config.DefaultConfigFile), f); err != nil {
		t.Fatalf("write config: %v", err)
	}
	chdir(t, dir)
}

func writeDotEnv(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, config.DefaultEnvFile), []byte(body), 0600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
}

// clearEnv unsets the AQUARIUS_* variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvOrigin, "")
	t.Setenv(config.EnvDBPath, "")
	t.Setenv(config.EnvTimeout, "")
}

// ─── Defaults ─────────────────────────────────────────────────────────────────

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Origin != config.DefaultOrigin {
		t.Errorf("Origin: expected %q, got %q", config.DefaultOrigin, cfg.Origin)
	}
	if cfg.Format != config.DefaultFormat {
		t.Errorf("Format: expected %q, got %q", config.DefaultFormat, cfg.Format)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("Timeout: expected %v, got %v", config.DefaultTimeout, cfg.Timeout)
	}
	if cfg.Concurrency != config.DefaultConcurrency {
		t.Errorf("Concurrency: expected %d, got %d", config.DefaultConcurrency, cfg.Concurrency)
	}
	if cfg.BreakerFailures != 0 {
		t.Errorf("BreakerFailures: expected 0, got %d", cfg.BreakerFailures)
	}
	if cfg.DBPath == "" {
		t.Error("DBPath should have a default (home dir based) value")
	}
	if cfg.ConfigPath != "" || cfg.EnvPath != "" {
		t.Errorf("no files should be recorded, got %q and %q", cfg.ConfigPath, cfg.EnvPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// ─── Config file loading ──────────────────────────────────────────────────────

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{
		Origin:          "https://dams.example.com",
		DefaultFormat:   "json",
		Timeout:         "60s",
		Rate:            rate(2.5),
		DBPath:          "/tmp/test.db",
		BreakerFailures: 3,
		Concurrency:     2,
		MetricsFile:     "/tmp/aquarius.prom",
	})

	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Origin != "https://dams.example.com" {
		t.Errorf("Origin: got %q", cfg.Origin)
	}
	if cfg.Format != "json" {
		t.Errorf("Format: expected json, got %q", cfg.Format)
	}
	if cfg.Timeout != time.Minute {
		t.Errorf("Timeout: expected 1m0s, got %v", cfg.Timeout)
	}
	if cfg.Rate != 2.5 {
		t.Errorf("Rate: expected 2.5, got %g", cfg.Rate)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath: expected /tmp/test.db, got %q", cfg.DBPath)
	}
	if cfg.BreakerFailures != 3 {
		t.Errorf("BreakerFailures: expected 3, got %d", cfg.BreakerFailures)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency: expected 2, got %d", cfg.Concurrency)
	}
	if cfg.MetricsFile != "/tmp/aquarius.prom" {
		t.Errorf("MetricsFile: got %q", cfg.MetricsFile)
	}
	if !strings.HasSuffix(cfg.ConfigPath, config.DefaultConfigFile) {
		t.Errorf("ConfigPath should end in config.json, got %q", cfg.ConfigPath)
	}
}

func TestLoadInvalidTimeoutInFileErrors(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{Timeout: "not-a-duration"})

	_, err := config.Load(config.Overrides{})
	if err == nil {
		t.Fatal("invalid timeout in config.json should fail Load")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("error should name the timeout key, got %v", err)
	}
}

func TestLoadZeroRateInFileDisablesPacing(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{Rate: rate(0)})

	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rate != 0 {
		t.Errorf("rate 0 in config.json should be kept, got %g", cfg.Rate)
	}
}

func TestLoadAbsentRateKeepsDefault(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{Origin: "http://file:3000"})

	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rate != config.DefaultRate {
		t.Errorf("Rate: expected default %g, got %g", config.DefaultRate, cfg.Rate)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	if _, err := config.Load(config.Overrides{}); err == nil {
		t.Error("malformed config.json should fail Load")
	}
}

// ─── Layer precedence ─────────────────────────────────────────────────────────

func TestDotEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeDotEnv(t, dir, "AQUARIUS_ORIGIN=http://dotenv:3000\nAQUARIUS_TIMEOUT=5s\n")
	writeConfig(t, dir, config.File{Origin: "http://file:3000", Timeout: "60s"})

	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Origin != "http://dotenv:3000" {
		t.Errorf(".env should override config.json: got %q", cfg.Origin)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf(".env timeout: expected 5s, got %v", cfg.Timeout)
	}
	if cfg.EnvPath == "" {
		t.Error("EnvPath should be recorded when .env is found")
	}
}

func TestEnvOverridesDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeDotEnv(t, dir, "AQUARIUS_ORIGIN=http://dotenv:3000\n")
	writeConfig(t, dir, config.File{Origin: "http://file:3000"})
	t.Setenv(config.EnvOrigin, "http://env:3000")

	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Origin != "http://env:3000" {
		t.Errorf("env should override .env: got %q", cfg.Origin)
	}
}

func TestFlagOverridesEverything(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeDotEnv(t, dir, "AQUARIUS_DB_PATH=/dotenv.db\n")
	writeConfig(t, dir, config.File{DBPath: "/file.db", DefaultFormat: "csv"})
	t.Setenv(config.EnvDBPath, "/env.db")

	cfg, err := config.Load(config.Overrides{DBPath: "/flag.db", Format: "md", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/flag.db" {
		t.Errorf("flag should override env: got %q", cfg.DBPath)
	}
	if cfg.Format != "md" {
		t.Errorf("flag format: got %q", cfg.Format)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("flag timeout: got %v", cfg.Timeout)
	}
}

func TestEmptyFlagsDoNotOverride(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{DBPath: "/file.db"})

	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/file.db" {
		t.Errorf("empty flag should not override file value: got %q", cfg.DBPath)
	}
}

func TestInvalidEnvTimeoutErrors(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(config.EnvTimeout, "soon")

	_, err := config.Load(config.Overrides{})
	if err == nil || !strings.Contains(err.Error(), config.EnvTimeout) {
		t.Errorf("expected error naming %s, got %v", config.EnvTimeout, err)
	}
}

// ─── Validate ─────────────────────────────────────────────────────────────────

func validConfig() *config.Config {
	return &config.Config{
		Origin:      config.DefaultOrigin,
		Format:      config.DefaultFormat,
		Timeout:     config.DefaultTimeout,
		Rate:        config.DefaultRate,
		DBPath:      "/tmp/a.db",
		Concurrency: 1,
	}
}

func TestValidateAcceptsValid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := validConfig()
	cfg.Origin = "not a url"
	cfg.Format = "xml"
	cfg.Concurrency = 0
	cfg.MetricsFile = "/tmp/metrics.txt"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"origin", "default_format", "concurrency", "metricsfile"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error should mention %s, got: %v", key, err)
		}
	}
}

// ─── File.Set ─────────────────────────────────────────────────────────────────

func TestFileSet(t *testing.T) {
	var f config.File
	for key, val := range map[string]string{
		"origin":           "http://x:1",
		"format":           "json",
		"timeout":          "20s",
		"rate":             "1.5",
		"db_path":          "/d.db",
		"breaker_failures": "4",
		"concurrency":      "2",
		"metrics_file":     "/m.prom",
	} {
		if err := f.Set(key, val); err != nil {
			t.Errorf("Set(%s): %v", key, err)
		}
	}
	want := config.File{
		Origin: "http://x:1", DefaultFormat: "json", Timeout: "20s",
		DBPath: "/d.db", BreakerFailures: 4, Concurrency: 2, MetricsFile: "/m.prom",
	}
	if f.Rate == nil || *f.Rate != 1.5 {
		t.Errorf("Set rate: got %v, want 1.5", f.Rate)
	}
	want.Rate = f.Rate
	if f != want {
		t.Errorf("Set result: got %+v, want %+v", f, want)
	}
}

func TestFileSetRejects(t *testing.T) {
	var f config.File
	if err := f.Set("timeout", "later"); err == nil {
		t.Error("bad duration should be rejected")
	}
	if err := f.Set("rate", "fast"); err == nil {
		t.Error("bad rate should be rejected")
	}
	err := f.Set("api_key", "x")
	var uk *config.UnknownKeyError
	if !errors.As(err, &uk) {
		t.Fatalf("expected UnknownKeyError, got %v", err)
	}
	if !strings.Contains(err.Error(), "breaker_failures") {
		t.Errorf("error should list valid keys, got %v", err)
	}
}

// ─── WriteFile / Template ─────────────────────────────────────────────────────

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	f := config.File{Origin: "http://a", DefaultFormat: "csv", Timeout: "45s", Concurrency: 2, Rate: rate(3)}

	if err := config.WriteFile(path, f); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Rate == nil || *got.Rate != 3 {
		t.Errorf("round trip rate: got %v, want 3", got.Rate)
	}
	got.Rate = f.Rate
	if *got != f {
		t.Errorf("round trip: got %+v, want %+v", *got, f)
	}
}

func TestWriteFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := config.WriteFile(path, config.Template()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file permissions: expected 0600, got %04o", info.Mode().Perm())
	}
}

func TestTemplateDefaults(t *testing.T) {
	tmpl := config.Template()
	data, err := json.Marshal(tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "metrics_file") {
		t.Errorf("template should omit metrics_file, got %s", data)
	}
	if tmpl.Origin != config.DefaultOrigin {
		t.Errorf("Template.Origin: got %q", tmpl.Origin)
	}
	if tmpl.Timeout != "15s" {
		t.Errorf("Template.Timeout: expected 15s, got %q", tmpl.Timeout)
	}
}
