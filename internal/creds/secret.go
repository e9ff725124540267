package creds

import (
	"context"
	"fmt"
	"log"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// SecretName returns the conventional name of the user secret created
// alongside the cluster.
func SecretName(clusterName string) string {
	return fmt.Sprintf("%s-elastic-user-secret", clusterName)
}

// fromClusterSecret looks up the cluster's user secret. Standalone username
// and password fields take priority; an ECK-style secret keyed by the
// built-in superuser name carries only the password, with the username
// implied by the key.
func fromClusterSecret(ctx context.Context, clientset kubernetes.Interface, namespace, clusterName string) Credentials {
	name := SecretName(clusterName)

	secret, err := clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		log.Printf("Warning: could not read secret %s/%s: %v", namespace, name, err)
		return Credentials{}
	}

	var c Credentials
	if u, ok := secret.Data["username"]; ok {
		c.Username = string(u)
	}
	if p, ok := secret.Data["password"]; ok {
		c.Password = string(p)
	} else if p, ok := secret.Data["elastic"]; ok {
		c.Password = string(p)
		c.Username = "elastic"
	}

	return c
}
