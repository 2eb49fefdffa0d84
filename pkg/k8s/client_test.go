package k8s

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestConfigMapData(t *testing.T) {
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "devdiag-catalog", Namespace: "support"},
		Data:       map[string]string{"catalog.json": `[]`},
		BinaryData: map[string][]byte{"catalog.yaml": []byte("- device: phone\n")},
	}
	c := NewClientWithInterface(fake.NewSimpleClientset(cm))
	ctx := context.Background()

	got, err := c.ConfigMapData(ctx, "support", "devdiag-catalog", "catalog.json")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	got, err = c.ConfigMapData(ctx, "support", "devdiag-catalog", "catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, "- device: phone\n", string(got))

	_, err = c.ConfigMapData(ctx, "support", "devdiag-catalog", "missing.json")
	assert.ErrorContains(t, err, `no key "missing.json"`)

	_, err = c.ConfigMapData(ctx, "other", "devdiag-catalog", "catalog.json")
	assert.ErrorContains(t, err, "failed to get configmap other/devdiag-catalog")
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".kube", "config"), expandHome("~/.kube/config"))
	assert.Equal(t, "/etc/kubeconfig", expandHome("/etc/kubeconfig"))
}
