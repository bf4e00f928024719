package manifest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hasbyte1/go-kube-query/manifest"
	"github.com/hasbyte1/go-kube-query/query"
	"github.com/hasbyte1/go-kube-query/resource"
)

func web() *unstructured.Unstructured {
	return manifest.Deployment("web", nil, 1,
		manifest.Container("nginx", "nginx:1.26", 80),
		manifest.Container("sidecar", "envoy:1.30"))
}

func TestChain(t *testing.T) {
	d := web()
	err := manifest.Chain(
		manifest.InNamespace("staging"),
		manifest.WithLabels(map[string]string{"env": "staging"}),
		manifest.WithAnnotations(map[string]string{"owner": "team-a"}),
		manifest.WithReplicas(4),
		manifest.WithImage("nginx", "nginx:1.27"),
		manifest.WithEnv("sidecar", "LOG", "debug"),
	)(d)
	require.NoError(t, err)

	assert.Equal(t, "staging", d.GetNamespace())
	assert.Equal(t, map[string]string{"app": "web", "env": "staging"}, d.GetLabels())
	assert.Equal(t, "team-a", d.GetAnnotations()["owner"])
	assert.Equal(t, int64(4), resource.Get(d, "spec.replicas"))
	assert.Equal(t, "nginx:1.27", resource.Get(d, "spec.template.spec.containers.0.image"))
	assert.Equal(t, "debug", resource.Get(d, "spec.template.spec.containers.1.env.0.value"))
}

func TestChain_StopsAtFirstError(t *testing.T) {
	ran := false
	err := manifest.Chain(
		manifest.WithImage("missing", "x"),
		func(*unstructured.Unstructured) error { ran = true; return nil },
	)(web())
	assert.ErrorIs(t, err, manifest.ErrContainerNotFound)
	assert.False(t, ran)
}

func TestWithReplicas_Unsupported(t *testing.T) {
	err := manifest.WithReplicas(2)(manifest.ConfigMap("c", nil))
	assert.ErrorIs(t, err, manifest.ErrUnsupportedKind)
}

func TestMerge(t *testing.T) {
	patch := map[string]any{
		"spec": map[string]any{
			"strategy": map[string]any{"type": "Recreate"},
			"replicas": int64(5),
		},
	}
	d := web()
	require.NoError(t, manifest.Merge(patch)(d))
	assert.Equal(t, "Recreate", resource.Get(d, "spec.strategy.type"))
	assert.Equal(t, int64(5), resource.Get(d, "spec.replicas"))
	assert.Equal(t, "nginx:1.26", resource.Get(d, "spec.template.spec.containers.0.image"))

	// The patch is copied, not shared.
	require.NoError(t, resource.Set(d, "spec.strategy.type", "RollingUpdate"))
	assert.Equal(t, "Recreate", patch["spec"].(map[string]any)["strategy"].(map[string]any)["type"])
}

func TestMountConfigMap(t *testing.T) {
	d := web()
	require.NoError(t, manifest.MountConfigMap("settings", "/etc/web")(d))

	assert.Equal(t, "settings", resource.Get(d, "spec.template.spec.volumes.0.configMap.name"))
	for i := range 2 {
		prefix := "spec.template.spec.containers." + string(rune('0'+i))
		assert.Equal(t, "/etc/web", resource.Get(d, prefix+".volumeMounts.0.mountPath"))
		assert.Equal(t, true, resource.Get(d, prefix+".volumeMounts.0.readOnly"))
	}

	err := manifest.MountConfigMap("x", "/x")(manifest.ConfigMap("c", nil))
	assert.ErrorIs(t, err, manifest.ErrUnsupportedKind)
}

func TestHashSuffix(t *testing.T) {
	a := manifest.ConfigMap("settings", map[string]string{"a": "1", "b": "2"})
	b := manifest.ConfigMap("settings", map[string]string{"b": "2", "a": "1"})
	c := manifest.ConfigMap("settings", map[string]string{"a": "1", "b": "3"})
	for _, obj := range []*unstructured.Unstructured{a, b, c} {
		require.NoError(t, manifest.HashSuffix()(obj))
	}

	assert.Equal(t, a.GetName(), b.GetName(), "hash must not depend on key order")
	assert.NotEqual(t, a.GetName(), c.GetName())
	assert.Regexp(t, `^settings-[0-9a-f]{10}$`, a.GetName())

	assert.ErrorIs(t, manifest.HashSuffix()(web()), manifest.ErrUnsupportedKind)
}

func TestApply_WorksOnCopies(t *testing.T) {
	src := []*unstructured.Unstructured{web(), manifest.ConfigMap("settings", map[string]string{"k": "v"})}

	out, err := query.TrySelect(query.From(src), manifest.Apply(manifest.InNamespace("prod"))).ToSlice()
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range src {
		assert.Equal(t, "prod", out[i].GetNamespace())
		assert.Empty(t, src[i].GetNamespace())
	}
}

func TestApply_ErrorNamesObject(t *testing.T) {
	_, err := query.TrySelect(query.Of(manifest.ConfigMap("settings", nil)),
		manifest.Apply(manifest.WithReplicas(3))).ToSlice()
	assert.True(t, errors.Is(err, manifest.ErrUnsupportedKind))
	assert.ErrorContains(t, err, "ConfigMap settings")
}
