// Package source fetches catalog documents from files, HTTP endpoints or
// Kubernetes ConfigMaps.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/helmcode/devdiag/pkg/k8s"
)

// maxDocumentSize caps remote documents.
const maxDocumentSize = 8 << 20

// Source returns the raw bytes of a catalog-like document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

// File reads a document from the local filesystem.
type File struct {
	Path string
}

func (f File) Fetch(context.Context) ([]byte, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return b, nil
}

func (f File) Location() string { return f.Path }

// HTTP fetches a document with a GET request. A nil Client uses a default
// client with a 30s timeout.
type HTTP struct {
	URL    string
	Client *http.Client
}

func (h HTTP) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", h.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", h.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", h.URL, resp.StatusCode)
	}
	return body, nil
}

func (h HTTP) Location() string { return h.URL }

// ConfigMapReader is satisfied by *k8s.Client.
type ConfigMapReader interface {
	ConfigMapData(ctx context.Context, namespace, name, key string) ([]byte, error)
}

// ConfigMap reads a document stored under Key of a ConfigMap.
type ConfigMap struct {
	Namespace string
	Name      string
	Key       string
	Reader    ConfigMapReader
}

func (c ConfigMap) Fetch(ctx context.Context) ([]byte, error) {
	if c.Reader == nil {
		return nil, fmt.Errorf("no kubernetes client for %s", c.Location())
	}
	return c.Reader.ConfigMapData(ctx, c.Namespace, c.Name, c.Key)
}

func (c ConfigMap) Location() string {
	return fmt.Sprintf("configmap://%s/%s/%s", c.Namespace, c.Name, c.Key)
}

// Options configure Open.
type Options struct {
	HTTPClient *http.Client
	// Kube is used for configmap:// locations. When nil a client is built
	// from Kubeconfig and KubeContext on first use.
	Kube        ConfigMapReader
	Kubeconfig  string
	KubeContext string
}

// Open resolves a location into a Source:
//
//	/path/to/catalog.json             local file
//	https://example.com/catalog.json  HTTP GET
//	configmap://namespace/name/key    ConfigMap key
func Open(location string, opts Options) (Source, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, fmt.Errorf("empty source location")
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return HTTP{URL: location, Client: opts.HTTPClient}, nil
	case strings.HasPrefix(location, "configmap://"):
		parts := strings.Split(strings.TrimPrefix(location, "configmap://"), "/")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("invalid configmap location: %s (expected configmap://namespace/name/key)", location)
		}
		reader := opts.Kube
		if reader == nil {
			reader = &lazyKube{kubeconfig: opts.Kubeconfig, kubeContext: opts.KubeContext}
		}
		return ConfigMap{Namespace: parts[0], Name: parts[1], Key: parts[2], Reader: reader}, nil
	case strings.HasPrefix(location, "file://"):
		return File{Path: strings.TrimPrefix(location, "file://")}, nil
	default:
		return File{Path: location}, nil
	}
}

// lazyKube defers building the Kubernetes client until a ConfigMap is
// actually read, so file and HTTP users never need a kubeconfig.
type lazyKube struct {
	kubeconfig  string
	kubeContext string
	client      Lazy[*k8s.Client]
}

func (l *lazyKube) ConfigMapData(ctx context.Context, namespace, name, key string) ([]byte, error) {
	client, err := l.client.Get(ctx, func(context.Context) (*k8s.Client, error) {
		return k8s.NewClient(l.kubeconfig, l.kubeContext)
	})
	if err != nil {
		return nil, err
	}
	return client.ConfigMapData(ctx, namespace, name, key)
}
