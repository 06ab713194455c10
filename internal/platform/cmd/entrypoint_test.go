package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"

	"github.com/louisbranch/scholarflow/internal/platform/logging"
)

type testConfig struct {
	HTTPAddr string `env:"CMD_TEST_HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	BaseURL  string `env:"CMD_TEST_BASE_URL" envDefault:"http://localhost:8080"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_HTTP_ADDR", "env:9000")
	t.Setenv("CMD_TEST_BASE_URL", "https://scholar.example")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "address")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base url")

	if err := ParseArgs(fs, []string{"-http-addr", "flag:9001"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.HTTPAddr != "flag:9001" {
		t.Fatalf("expected flag value for address, got %q", cfg.HTTPAddr)
	}
	if cfg.BaseURL != "https://scholar.example" {
		t.Fatalf("expected env base url, got %q", cfg.BaseURL)
	}
}

func TestParseConfigFromArgsNilArgs(t *testing.T) {
	cfg := testConfig{}
	fs := flag.NewFlagSet("configargs", flag.ContinueOnError)
	fs.StringVar(&cfg.HTTPAddr, "http-addr", "", "address")
	if err := ParseConfigFromArgs(&cfg, fs, nil); err != nil {
		t.Fatalf("parse config and args: %v", err)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceScholarFlow, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("SCHOLARFLOW_OTEL_ENDPOINT", "")
	want := errors.New("boom")

	err := RunWithTelemetry(context.Background(), ServiceScholarCtl, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestRunWithTelemetryRejectsBadLogLevel(t *testing.T) {
	opts := RunOptions{Logging: logging.Config{Level: "chatty"}}
	err := RunWithTelemetryAndOptions(context.Background(), ServiceScholarFlow, opts, func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected log level error")
	}
}
