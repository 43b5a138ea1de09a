package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOK   bool
	}{
		{
			name:     "nil error",
			err:      nil,
			wantCode: 0,
			wantOK:   true,
		},
		{
			name:     "exit error",
			err:      &ExitError{Code: 42},
			wantCode: 42,
			wantOK:   true,
		},
		{
			name:     "wrapped exit error",
			err:      errors.Join(errors.New("remote command failed"), &ExitError{Code: 3}),
			wantCode: 3,
			wantOK:   true,
		},
		{
			name:     "negative status clamps to 255",
			err:      &ExitError{Code: -1},
			wantCode: 255,
			wantOK:   true,
		},
		{
			name:     "plain error",
			err:      errors.New("connection refused"),
			wantCode: 0,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ExitCode(tt.err)
			if code != tt.wantCode || ok != tt.wantOK {
				t.Errorf("ExitCode() = (%d, %v), want (%d, %v)", code, ok, tt.wantCode, tt.wantOK)
			}
		})
	}
}

func TestDefaultExecutorImplementsExecutor(t *testing.T) {
	var _ Executor = DefaultExecutor{}
	var _ Executor = NewFake()
}

func TestFakeMatching(t *testing.T) {
	ctx := context.Background()

	t.Run("exact match wins over substring", func(t *testing.T) {
		f := NewFake()
		f.SetResponse("docker ps", "generic", nil)
		f.SetResponse("docker ps --filter name=x --format {{.Names}}", "x", nil)

		out, err := f.Execute(ctx, "docker", "ps", "--filter", "name=x", "--format", "{{.Names}}")
		if err != nil {
			t.Fatalf("Execute() error: %v", err)
		}
		if out != "x" {
			t.Errorf("Execute() = %q, want %q", out, "x")
		}
	})

	t.Run("longest substring pattern wins", func(t *testing.T) {
		f := NewFake()
		f.SetResponse("docker ps", "local", nil)
		f.SetResponse("10.0.0.3 docker ps", "remote", nil)

		out, _ := f.Execute(ctx, "ssh", "-o", "BatchMode=yes", "10.0.0.3", "docker", "ps")
		if out != "remote" {
			t.Errorf("remote call matched %q, want %q", out, "remote")
		}
		out, _ = f.Execute(ctx, "docker", "ps")
		if out != "local" {
			t.Errorf("local call matched %q, want %q", out, "local")
		}
	})

	t.Run("queued responses consumed before sticky", func(t *testing.T) {
		f := NewFake()
		f.PushResponse("ray status", "", &ExitError{Code: 1})
		f.PushResponse("ray status", "", &ExitError{Code: 1})
		f.SetResponse("ray status", "ok", nil)

		for i := 0; i < 2; i++ {
			if _, err := f.Execute(ctx, "docker", "exec", "x", "ray", "status"); err == nil {
				t.Fatalf("attempt %d: expected queued error", i+1)
			}
		}
		out, err := f.Execute(ctx, "docker", "exec", "x", "ray", "status")
		if err != nil || out != "ok" {
			t.Errorf("Execute() = (%q, %v), want (%q, nil)", out, err, "ok")
		}
	})

	t.Run("unmatched command returns empty success", func(t *testing.T) {
		f := NewFake()
		out, err := f.Execute(ctx, "true")
		if out != "" || err != nil {
			t.Errorf("Execute() = (%q, %v), want empty success", out, err)
		}
	})
}

func TestFakeRecordsCalls(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	f.Execute(ctx, "ibdev2netdev")
	f.Execute(ctx, "ip", "-o", "-4", "addr", "show")

	calls := f.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Cmd != "ibdev2netdev" {
		t.Errorf("first call = %q, want ibdev2netdev", calls[0].Cmd)
	}
	if lines := f.CallLines(); lines[1] != "ip -o -4 addr show" {
		t.Errorf("second call line = %q", lines[1])
	}

	f.Reset()
	if len(f.Calls()) != 0 {
		t.Error("Reset() did not clear calls")
	}
}

func TestFakeLookPath(t *testing.T) {
	f := NewFake()
	if _, err := f.LookPath("avahi-browse"); err == nil {
		t.Error("LookPath() expected error for unregistered binary")
	}
	f.AddBinary("avahi-browse")
	path, err := f.LookPath("avahi-browse")
	if err != nil {
		t.Fatalf("LookPath() error: %v", err)
	}
	if path == "" {
		t.Error("LookPath() returned empty path")
	}
}

func TestFakeStream(t *testing.T) {
	f := NewFake()
	f.SetResponse("docker logs", "container output", nil)

	var buf strings.Builder
	err := f.Stream(context.Background(), nil, &buf, &buf, "docker", "logs", "-f", "x")
	if err != nil {
		t.Fatalf("Stream() error: %v", err)
	}
	if !strings.Contains(buf.String(), "container output") {
		t.Errorf("Stream() wrote %q, want container output", buf.String())
	}
}
