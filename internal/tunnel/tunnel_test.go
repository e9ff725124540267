package tunnel

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "idle"},
		{StateStarting, "starting"},
		{StateRunning, "running"},
		{StateStopping, "stopping"},
		{StateFailed, "failed"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
			}
		})
	}
}

func TestParseForwardLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantPort int
		wantOK   bool
	}{
		{
			name:     "ipv4 forward line",
			line:     "Forwarding from 127.0.0.1:54321 -> 9200",
			wantPort: 54321,
			wantOK:   true,
		},
		{
			name:   "ipv6 forward line ignored",
			line:   "Forwarding from [::1]:54321 -> 9200",
			wantOK: false,
		},
		{
			name:   "connection log line ignored",
			line:   "Handling connection for 54321",
			wantOK: false,
		},
		{
			name:   "loopback address without forward prefix",
			line:   "listening on 127.0.0.1:8080",
			wantOK: false,
		},
		{
			name:   "empty line",
			line:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port, ok := parseForwardLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("parseForwardLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if ok && port != tt.wantPort {
				t.Errorf("parseForwardLine(%q) port = %d, want %d", tt.line, port, tt.wantPort)
			}
		})
	}
}

func TestKubectlPortForward_Args(t *testing.T) {
	cmd := kubectlPortForward(Spec{
		Context:   "staging",
		Namespace: "es",
		Target:    "pod/prod-es-data-0",
	})

	want := []string{"kubectl", "port-forward", "pod/prod-es-data-0", ":9200", "-n", "es", "--context", "staging"}
	if len(cmd.Args) != len(want) {
		t.Fatalf("args = %v, want %v", cmd.Args, want)
	}
	for i := range want {
		if cmd.Args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, cmd.Args[i], want[i])
		}
	}
}

// fakeTunnel returns a tunnel whose subprocess is a shell script and whose
// exit function reports into a channel instead of killing the test binary.
func fakeTunnel(t *testing.T, script string, launchTimeout time.Duration) (*Tunnel, chan int) {
	t.Helper()
	exited := make(chan int, 1)
	tun := New(launchTimeout, 2*time.Second, false)
	tun.newCmd = func(Spec) *exec.Cmd {
		return exec.Command("sh", "-c", script)
	}
	tun.exitFn = func(code int) {
		exited <- code
	}
	return tun, exited
}

func TestOpen_DiscoversLocalPort(t *testing.T) {
	tun, _ := fakeTunnel(t, `echo "Forwarding from 127.0.0.1:34567 -> 9200"; sleep 30`, 10*time.Second)
	defer tun.Close()

	port, err := tun.Open(context.Background(), Spec{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if port != 34567 {
		t.Errorf("Open() port = %d, want 34567", port)
	}
	if !tun.IsRunning() {
		t.Errorf("state = %v, want running", tun.State())
	}
	if tun.LocalPort() != 34567 {
		t.Errorf("LocalPort() = %d, want 34567", tun.LocalPort())
	}
}

func TestOpen_AlreadyRunningIsIdempotent(t *testing.T) {
	tun, _ := fakeTunnel(t, `echo "Forwarding from 127.0.0.1:34567 -> 9200"; sleep 30`, 10*time.Second)
	defer tun.Close()

	first, err := tun.Open(context.Background(), Spec{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := tun.Open(context.Background(), Spec{})
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	if first != second {
		t.Errorf("second Open() port = %d, want %d", second, first)
	}
}

func TestOpen_SubprocessExitBeforeForwardLine(t *testing.T) {
	tun, _ := fakeTunnel(t, `echo "error: pod not found" >&2; exit 1`, 10*time.Second)

	_, err := tun.Open(context.Background(), Spec{})
	if err == nil {
		t.Fatal("Open() = nil error, want launch failure")
	}
	if !strings.Contains(err.Error(), "pod not found") {
		t.Errorf("error %q should carry subprocess stderr", err)
	}
	if tun.State() != StateFailed {
		t.Errorf("state = %v, want failed", tun.State())
	}
}

func TestOpen_LaunchTimeout(t *testing.T) {
	tun, _ := fakeTunnel(t, `sleep 30`, 200*time.Millisecond)

	start := time.Now()
	_, err := tun.Open(context.Background(), Spec{})
	if err == nil {
		t.Fatal("Open() = nil error, want timeout")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Open() took %v, should be bounded by the launch timeout", elapsed)
	}
	if tun.State() != StateFailed {
		t.Errorf("state = %v, want failed", tun.State())
	}
}

func TestMonitor_ExitsDriverOnUnexpectedDeath(t *testing.T) {
	// Subprocess reports its port, then dies on its own shortly after.
	tun, exited := fakeTunnel(t, `echo "Forwarding from 127.0.0.1:4567 -> 9200"; sleep 1`, 10*time.Second)

	if _, err := tun.Open(context.Background(), Spec{}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	select {
	case code := <-exited:
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("driver did not exit after tunnel subprocess death")
	}
}

func TestClose_DoesNotTriggerDeathExit(t *testing.T) {
	tun, exited := fakeTunnel(t, `echo "Forwarding from 127.0.0.1:4567 -> 9200"; sleep 30`, 10*time.Second)

	if _, err := tun.Open(context.Background(), Spec{}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tun.Close()

	if tun.State() != StateIdle {
		t.Errorf("state after Close = %v, want idle", tun.State())
	}

	select {
	case code := <-exited:
		t.Errorf("deliberate Close triggered driver exit with code %d", code)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestClose_NeverStarted(t *testing.T) {
	tun := New(time.Second, time.Second, false)
	tun.Close() // must not panic

	if tun.State() != StateIdle {
		t.Errorf("state = %v, want idle", tun.State())
	}
}
