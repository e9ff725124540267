// Package tunnel supervises a kubectl port-forward subprocess that exposes
// the remote cluster's HTTP port on an ephemeral local port.
package tunnel

import (
	"os"
	"os/exec"
	"sync"
	"time"
)

type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Spec describes the forward to establish.
type Spec struct {
	Context   string
	Namespace string
	// Target is a kubectl target reference: "pod/<name>" or "service/<name>".
	Target string
}

// Tunnel owns the port-forward subprocess. The process is exclusively owned
// here: nobody else signals or reaps it. Once running, the tunnel's liveness
// is coupled to the driver's - if the subprocess dies outside a deliberate
// Close, the whole driver exits so the external supervisor can restart it.
type Tunnel struct {
	mu sync.Mutex

	launchTimeout time.Duration
	teardownGrace time.Duration
	verbose       bool

	state     State
	localPort int
	cmd       *exec.Cmd
	waitErr   error
	done      chan struct{} // closed once the subprocess has been reaped
	closing   bool          // set before a deliberate teardown

	// test seams
	newCmd func(Spec) *exec.Cmd
	exitFn func(int)
}

func New(launchTimeout, teardownGrace time.Duration, verbose bool) *Tunnel {
	return &Tunnel{
		launchTimeout: launchTimeout,
		teardownGrace: teardownGrace,
		verbose:       verbose,
		state:         StateIdle,
		newCmd:        kubectlPortForward,
		exitFn:        os.Exit,
	}
}

func (t *Tunnel) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tunnel) IsRunning() bool {
	return t.State() == StateRunning
}

// LocalPort returns the bound local port, valid only while running.
func (t *Tunnel) LocalPort() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.localPort
}
