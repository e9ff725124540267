// Package creds resolves Elasticsearch credentials for a target cluster,
// trying a local file store first and the cluster's own secret second.
package creds

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/client-go/kubernetes"
)

// ErrNotFound is returned when no source yields a complete username/password
// pair. Fatal to the connect attempt; the caller may fix a source and retry.
var ErrNotFound = errors.New("credentials not found")

// Credentials is a resolved username/password pair.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) complete() bool {
	return c.Username != "" && c.Password != ""
}

// Resolver resolves credentials for a cluster. StorePath points at the local
// JSON store; the store is optional and read-only from this process.
type Resolver struct {
	StorePath string
}

// Resolve tries each source in priority order and returns the first complete
// pair. Source failures (missing store, bad JSON, unreadable secret) are
// logged and skipped, never fatal on their own.
func (r *Resolver) Resolve(ctx context.Context, clientset kubernetes.Interface, contextName, namespace, clusterName string) (Credentials, error) {
	if c := r.fromStore(contextName, clusterName); c.complete() {
		return c, nil
	}

	if c := fromClusterSecret(ctx, clientset, namespace, clusterName); c.complete() {
		return c, nil
	}

	return Credentials{}, fmt.Errorf("%w for cluster %s", ErrNotFound, clusterName)
}
