// Package k8sutil provides cluster API access and target pod discovery.
package k8sutil

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClientForContext builds a clientset for the given kubeconfig context.
// kubeconfigPaths can specify multiple kubeconfig files to merge (like
// KUBECONFIG=a:b:c); empty means clientcmd's default chain (~/.kube/config).
func NewClientForContext(kubeconfigPaths []string, contextName string) (*kubernetes.Clientset, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if len(kubeconfigPaths) > 0 {
		loadingRules.Precedence = kubeconfigPaths
	}
	configOverrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)

	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build REST config for context %s: %w", contextName, err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset for context %s: %w", contextName, err)
	}

	return clientset, nil
}
