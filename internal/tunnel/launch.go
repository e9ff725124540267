package tunnel

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// RemotePort is the fixed HTTP port of the remote cluster.
const RemotePort = 9200

// forwardingRE extracts the ephemeral local port from kubectl's
// "Forwarding from 127.0.0.1:<port> -> 9200" line.
var forwardingRE = regexp.MustCompile(`127\.0\.0\.1:(\d+)`)

func kubectlPortForward(spec Spec) *exec.Cmd {
	return exec.Command("kubectl", "port-forward",
		spec.Target,
		fmt.Sprintf(":%d", RemotePort),
		"-n", spec.Namespace,
		"--context", spec.Context,
	)
}

// Open spawns the port-forward subprocess and waits for it to report its
// bound local port. The wait is bounded by the launch timeout; expiry, exit
// before the forward line appears, or ctx cancellation is a launch failure.
// On success a monitor goroutine supervises the subprocess until it dies.
func (t *Tunnel) Open(ctx context.Context, spec Spec) (int, error) {
	t.mu.Lock()
	if t.state == StateRunning {
		port := t.localPort
		t.mu.Unlock()
		return port, nil
	}
	t.state = StateStarting
	t.mu.Unlock()

	cmd := t.newCmd(spec)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, t.fail(fmt.Errorf("failed to open stdout pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return 0, t.fail(fmt.Errorf("failed to start port forward: %w", err))
	}

	done := make(chan struct{})
	go func() {
		err := cmd.Wait()
		t.mu.Lock()
		t.waitErr = err
		t.mu.Unlock()
		close(done)
	}()

	portCh := make(chan int, 1)
	go scanForwardOutput(stdout, portCh, t.verbose)

	select {
	case port := <-portCh:
		t.mu.Lock()
		t.cmd = cmd
		t.done = done
		t.localPort = port
		t.state = StateRunning
		t.mu.Unlock()
		go t.monitor(done)
		return port, nil

	case <-done:
		return 0, t.fail(fmt.Errorf("port forward failed: %s", strings.TrimSpace(stderr.String())))

	case <-time.After(t.launchTimeout):
		_ = cmd.Process.Kill()
		<-done
		return 0, t.fail(fmt.Errorf("timeout waiting for port forward to report its local port"))

	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return 0, t.fail(ctx.Err())
	}
}

// scanForwardOutput reads subprocess stdout line-by-line for the lifetime of
// the subprocess, publishing the first discovered local port. It keeps
// draining after discovery so a chatty kubectl never blocks on a full pipe.
func scanForwardOutput(stdout io.Reader, portCh chan<- int, verbose bool) {
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if verbose {
			log.Printf("[kubectl] %s", line)
		}
		if port, ok := parseForwardLine(line); ok {
			select {
			case portCh <- port:
			default:
			}
		}
	}
}

// parseForwardLine extracts the local port from a loopback forward line.
func parseForwardLine(line string) (int, bool) {
	if !strings.Contains(line, "Forwarding from") {
		return 0, false
	}
	m := forwardingRE.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	port, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return port, true
}

func (t *Tunnel) fail(err error) error {
	t.mu.Lock()
	t.state = StateFailed
	t.mu.Unlock()
	return err
}

// monitor blocks on the subprocess for the rest of the driver's connected
// lifetime. Unexpected death terminates the driver: the contract is
// "connected implies the tunnel is alive", and the caller's restart policy
// depends on this exit.
func (t *Tunnel) monitor(done <-chan struct{}) {
	<-done

	t.mu.Lock()
	closing := t.closing
	waitErr := t.waitErr
	cmd := t.cmd
	t.mu.Unlock()

	if closing {
		return
	}

	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}
	log.Printf("kubectl port-forward exited with code %d: %v", code, waitErr)
	t.exitFn(1)
}

// Close tears the subprocess down: graceful terminate, bounded wait,
// forceful kill. Safe to call when the tunnel never started.
func (t *Tunnel) Close() {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return
	}
	t.state = StateStopping
	t.closing = true
	cmd := t.cmd
	done := t.done
	t.mu.Unlock()

	_ = cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-done:
	case <-time.After(t.teardownGrace):
		log.Printf("kubectl did not exit within %v, killing", t.teardownGrace)
		_ = cmd.Process.Kill()
		<-done
	}

	t.mu.Lock()
	t.state = StateIdle
	t.localPort = 0
	t.mu.Unlock()
}
