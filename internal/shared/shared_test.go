package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "key=value") {
			t.Errorf("expected message and key/value in output, got %q", buf.String())
		}
	})

	t.Run("OpenLogFile creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "jam.log")
		f, err := OpenLogFile(path)
		if err != nil {
			t.Fatalf("OpenLogFile() error = %v", err)
		}
		NewLogger(f).Info("written")
		f.Close()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "written") {
			t.Errorf("expected log line in file, got %q", data)
		}
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		tt := []struct {
			in   string
			want log.Level
		}{
			{"", log.InfoLevel},
			{"debug", log.DebugLevel},
			{"WARN", log.WarnLevel},
			{" error ", log.ErrorLevel},
			{"nonsense", log.InfoLevel},
		}
		for _, tc := range tt {
			if got := ParseLogLevel(tc.in); got != tc.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		}
	})
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	b, _ := GenerateState()

	if len(a) != 32 {
		t.Errorf("expected 32 hex characters, got %d (%s)", len(a), a)
	}
	if a == b {
		t.Error("expected two states to differ")
	}
}

func TestBrowserCommand(t *testing.T) {
	tt := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "rundll32"},
		{goos: "plan9", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.goos, func(t *testing.T) {
			cmd, err := browserCommand(tc.goos, "https://example.com")
			if (err != nil) != tc.wantErr {
				t.Fatalf("browserCommand() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if filepath.Base(cmd.Args[0]) != tc.want {
				t.Errorf("expected %s, got %s", tc.want, cmd.Args[0])
			}
			if cmd.Args[len(cmd.Args)-1] != "https://example.com" {
				t.Errorf("expected url as last argument, got %v", cmd.Args)
			}
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]string{"name": "Test Playlist"}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(compact) != `{"name":"Test Playlist"}` {
		t.Errorf("unexpected compact output %s", compact)
	}

	pretty, _ := MarshalJSON(data, true)
	if !strings.Contains(string(pretty), "\n  \"name\"") {
		t.Errorf("expected indented output, got %s", pretty)
	}
}
