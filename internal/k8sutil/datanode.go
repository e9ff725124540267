package k8sutil

import (
	"context"
	"fmt"
	"log"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// DataNodeSelectors returns the label selectors used to locate a data-serving
// pod for an Elasticsearch cluster, in priority order: ECK content data nodes
// first, then alternative operator and Helm chart conventions.
func DataNodeSelectors(clusterName string) []string {
	return []string{
		fmt.Sprintf("elasticsearch.k8s.elastic.co/cluster-name=%s,elasticsearch.k8s.elastic.co/node-data=true", clusterName),
		fmt.Sprintf("cluster-name=%s,node-type=data", clusterName),
		fmt.Sprintf("app=%s-es-data", clusterName),
		fmt.Sprintf("app.kubernetes.io/name=%s,app.kubernetes.io/component=data", clusterName),
		fmt.Sprintf("release=%s,component=data", clusterName),
	}
}

// FindDataNodePod looks for a running data node pod for the named cluster,
// trying each selector in turn. The first selector that matches any running
// pod wins. Failures (API errors included) are logged and treated as a miss:
// the caller always has the cluster's HTTP service to fall back to, so
// discovery never fails a connect on its own.
func FindDataNodePod(ctx context.Context, clientset kubernetes.Interface, namespace, clusterName string) string {
	for _, selector := range DataNodeSelectors(clusterName) {
		pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
			LabelSelector: selector,
			FieldSelector: "status.phase=Running",
		})
		if err != nil {
			log.Printf("Failed to list pods for selector %q: %v", selector, err)
			continue
		}
		if len(pods.Items) == 0 {
			continue
		}

		name := pods.Items[0].Name
		log.Printf("Found data node pod: %s (selector: %s)", name, selector)
		return name
	}

	return ""
}

// ServiceFallbackName returns the conventionally-named HTTP service used when
// no data node pod is resolvable.
func ServiceFallbackName(clusterName string) string {
	return clusterName + "-es-http"
}
