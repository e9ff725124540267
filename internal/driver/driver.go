// Package driver holds the session state machine that ties credential
// resolution, target discovery and the tunnel together.
package driver

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sync"

	"k8s.io/client-go/kubernetes"

	"github.com/opsnotebook/es-driver/internal/config"
	"github.com/opsnotebook/es-driver/internal/creds"
	"github.com/opsnotebook/es-driver/internal/k8sutil"
	"github.com/opsnotebook/es-driver/internal/tunnel"
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// View is the session as reported over the control API.
type View struct {
	Status    Status            `json:"status"`
	TargetURL string            `json:"target_url"`
	Headers   map[string]string `json:"headers"`
	Metadata  map[string]string `json:"metadata"`
}

// TunnelOpener is the supervisor surface the state machine drives.
type TunnelOpener interface {
	Open(ctx context.Context, spec tunnel.Spec) (int, error)
	Close()
}

type credentialSource interface {
	Resolve(ctx context.Context, clientset kubernetes.Interface, contextName, namespace, clusterName string) (creds.Credentials, error)
}

// Driver owns the single session of this process. connectMu serializes
// connect attempts; mu guards the published session fields so /status reads
// never block behind an in-flight connect.
type Driver struct {
	connectMu sync.Mutex
	mu        sync.RWMutex

	args Args

	status    Status
	targetURL string
	headers   map[string]string
	metadata  map[string]string

	tunnel    TunnelOpener
	resolver  credentialSource
	newClient func(contextName string) (kubernetes.Interface, error)
	findPod   func(ctx context.Context, clientset kubernetes.Interface, namespace, clusterName string) string
}

func New(cfg *config.Config, args Args) *Driver {
	return &Driver{
		args:   args,
		status: StatusDisconnected,
		metadata: map[string]string{
			"default_command": "GET /_cluster/health",
		},
		tunnel:   tunnel.New(cfg.LaunchTimeout, cfg.TeardownGrace, cfg.Verbose),
		resolver: &creds.Resolver{StorePath: cfg.CredentialsFile},
		newClient: func(contextName string) (kubernetes.Interface, error) {
			return k8sutil.NewClientForContext(cfg.ResolvedKubeconfigs, contextName)
		},
		findPod: k8sutil.FindDataNodePod,
	}
}

// Status returns the current session status without blocking on connects.
func (d *Driver) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// View returns the full session view.
func (d *Driver) View() View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.viewLocked()
}

func (d *Driver) viewLocked() View {
	return View{
		Status:    d.status,
		TargetURL: d.targetURL,
		Headers:   d.headers,
		Metadata:  d.metadata,
	}
}

// Connect establishes the session. Idempotent: when already connected it
// returns the existing session and never launches a second tunnel. On any
// failure the session transitions to error and the cause is returned.
func (d *Driver) Connect(ctx context.Context) (View, error) {
	d.connectMu.Lock()
	defer d.connectMu.Unlock()

	if d.Status() == StatusConnected {
		return d.View(), nil
	}

	targetURL, headers, err := d.establish(ctx)
	if err != nil {
		d.mu.Lock()
		d.status = StatusError
		d.mu.Unlock()
		return View{}, err
	}

	// Publish everything together: no reader may observe connected status
	// with an empty target.
	d.mu.Lock()
	d.targetURL = targetURL
	d.headers = headers
	d.status = StatusConnected
	view := d.viewLocked()
	d.mu.Unlock()

	return view, nil
}

func (d *Driver) establish(ctx context.Context) (targetURL string, headers map[string]string, err error) {
	if err := d.args.Validate(); err != nil {
		return "", nil, err
	}

	clientset, err := d.newClient(d.args.Context)
	if err != nil {
		return "", nil, err
	}

	c, err := d.resolver.Resolve(ctx, clientset, d.args.Context, d.args.Namespace, d.args.ClusterName)
	if err != nil {
		return "", nil, err
	}

	var target string
	if pod := d.findPod(ctx, clientset, d.args.Namespace, d.args.ClusterName); pod != "" {
		target = "pod/" + pod
		log.Printf("Port-forwarding to data node: %s", target)
	} else {
		target = "service/" + k8sutil.ServiceFallbackName(d.args.ClusterName)
		log.Printf("No data node found, falling back to service: %s", target)
	}

	port, err := d.tunnel.Open(ctx, tunnel.Spec{
		Context:   d.args.Context,
		Namespace: d.args.Namespace,
		Target:    target,
	})
	if err != nil {
		return "", nil, err
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	return fmt.Sprintf("http://127.0.0.1:%d", port),
		map[string]string{"Authorization": "Basic " + auth},
		nil
}

// Close releases the tunnel subprocess. Called on shutdown, after the
// control server has stopped accepting requests.
func (d *Driver) Close() {
	d.tunnel.Close()
}
