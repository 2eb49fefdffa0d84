package k8s

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Client reads catalog documents from ConfigMaps.
type Client struct {
	clientset kubernetes.Interface
}

// NewClient creates a new Kubernetes client. In-cluster configuration is
// preferred; kubeconfig (and optionally kubeContext) is the fallback.
func NewClient(kubeconfig, kubeContext string) (*Client, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		config, err = buildConfig(expandHome(kubeconfig), kubeContext)
		if err != nil {
			return nil, fmt.Errorf("failed to create config: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}
	return &Client{clientset: clientset}, nil
}

// NewClientWithInterface wraps an existing clientset, e.g. a fake one in tests.
func NewClientWithInterface(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

func buildConfig(kubeconfig, kubeContext string) (*rest.Config, error) {
	rules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig}
	overrides := &clientcmd.ConfigOverrides{}
	if kubeContext != "" {
		overrides.CurrentContext = kubeContext
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
}

// ConfigMapData returns one key of a ConfigMap. Both data and binaryData
// are looked up.
func (c *Client) ConfigMapData(ctx context.Context, namespace, name, key string) ([]byte, error) {
	cm, err := c.clientset.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get configmap %s/%s: %w", namespace, name, err)
	}

	if v, ok := cm.Data[key]; ok {
		return []byte(v), nil
	}
	if v, ok := cm.BinaryData[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("configmap %s/%s has no key %q", namespace, name, key)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home := homedir.HomeDir(); home != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
