package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewLogger tests creating a new logger instance
func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid text logger",
			config: Config{
				Level:     "info",
				Format:    "text",
				Output:    "stdout",
				Component: "test",
			},
			wantErr: false,
		},
		{
			name: "valid json logger",
			config: Config{
				Level:     "debug",
				Format:    "json",
				Output:    "stderr",
				Component: "test",
			},
			wantErr: false,
		},
		{
			name: "invalid log level falls back to info",
			config: Config{
				Level:     "invalid",
				Format:    "text",
				Output:    "stdout",
				Component: "test",
			},
			wantErr: false,
		},
		{
			name:    "empty values use defaults",
			config:  Config{},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")

	logger, err := New(Config{
		Level:     "info",
		Format:    "json",
		Output:    path,
		Component: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hello", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
	if entry["component"] != "test" {
		t.Errorf("component = %v, want test", entry["component"])
	}
}

func TestLogger_CriticalLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	logger, err := New(Config{
		Level:     "error",
		Format:    "text",
		Output:    path,
		Component: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Critical("database integrity violation", "command", "redeem")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "CRITICAL") {
		t.Errorf("critical entry should carry the CRITICAL level: %s", data)
	}
	if !strings.Contains(string(data), "database integrity violation") {
		t.Errorf("critical entry missing message: %s", data)
	}
}

func TestLogger_WithComponent(t *testing.T) {
	logger, err := New(Config{Component: "bot"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	scoped := logger.WithComponent("responder")
	if scoped == nil {
		t.Fatal("WithComponent() returned nil")
	}
	if scoped == logger {
		t.Error("WithComponent() should return a new logger")
	}
}

func TestGlobal_UninitializedFallback(t *testing.T) {
	if Global() == nil {
		t.Error("Global() should fall back to a default logger")
	}
}
