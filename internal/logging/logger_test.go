package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()

	config := Config{
		Level:      "debug",
		LogDir:     tempDir,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	if err := Init(config); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		t.Errorf("log dir not created: %s", tempDir)
	}

	Info("info message")
	Warn("warn message")
	Debug("debug message")

	time.Sleep(100 * time.Millisecond)

	mainLogPath := filepath.Join(tempDir, "webqa_inspector.log")
	if _, err := os.Stat(mainLogPath); os.IsNotExist(err) {
		t.Errorf("main log file not created: %s", mainLogPath)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	tempDir := t.TempDir()

	config := Config{Level: "info", LogDir: tempDir, MaxSize: 10, MaxBackups: 3, MaxAge: 28}
	if err := Init(config); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	Info("shown")
	Debugf("hidden at info level: %v", true)

	time.Sleep(100 * time.Millisecond)

	content, err := os.ReadFile(filepath.Join(tempDir, "webqa_inspector.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(content) == 0 {
		t.Error("log file is empty")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.Level != "info" {
		t.Errorf("default level = %q, want info", config.Level)
	}
	if config.LogDir != "logs" {
		t.Errorf("default log dir = %q, want logs", config.LogDir)
	}
	if !config.Compress {
		t.Error("default should enable compression")
	}
}
