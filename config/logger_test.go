package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggingConfig_PrepareFileLog(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "css3d.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: dest, Mode: "overwrite"},
	}

	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("hidden message")
	log.Info("visible message")
	_ = log.Sync()

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("log file was not created: %v", err)
	}
	if !strings.Contains(string(data), "visible message") {
		t.Errorf("info message missing from log:\n%s", data)
	}
	if strings.Contains(string(data), "hidden message") {
		t.Errorf("debug message must not be logged at normal level:\n%s", data)
	}
}

func TestLoggingConfig_PrepareWithReport(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "css3d.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none", Destination: dest},
	}
	rpt := &Report{entries: make(map[string]entry)}

	log, err := conf.Prepare(rpt)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("debug message")
	_ = log.Sync()

	// report forces debug file log
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("log file was not created: %v", err)
	}
	if !strings.Contains(string(data), "debug message") {
		t.Errorf("debug message missing from log:\n%s", data)
	}
	if _, ok := rpt.entries["final.log"]; !ok {
		t.Error("log file was not stored in report")
	}
}

func TestLoggingConfig_PrepareNone(t *testing.T) {
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none"},
	}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if log == nil {
		t.Fatal("Prepare() returned nil logger")
	}
	log.Info("goes nowhere")
}

func TestConsoleOut_Reserve(t *testing.T) {
	c := &consoleOut{}
	if c.stream() != os.Stdout {
		t.Error("console output must go to stdout by default")
	}
	c.reserved.Store(true)
	if c.stream() != os.Stderr {
		t.Error("reserved console output must go to stderr")
	}
}
