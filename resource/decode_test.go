package resource_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hasbyte1/go-kube-query/resource"
)

func TestDecode_MultiDocumentAndLists(t *testing.T) {
	objs, err := resource.LoadFiles(filepath.Join("testdata", "objects.yaml"))
	require.NoError(t, err)
	require.Len(t, objs, 3)

	assert.Equal(t, "Pod", objs[0].GetKind())
	assert.Equal(t, "Service", objs[1].GetKind())
	assert.Equal(t, "ConfigMap", objs[2].GetKind())

	// Integers are stored as int64 so objects deep-copy cleanly.
	assert.Equal(t, int64(80), resource.Get(objs[0], "spec.containers.0.ports.0.containerPort"))
	assert.Equal(t, int64(8080), resource.Get(objs[1], "spec.ports.0.targetPort"))
	assert.NotPanics(t, func() { objs[0].DeepCopy() })
}

func TestLoadFiles_Directory(t *testing.T) {
	objs, err := resource.LoadFiles("testdata")
	require.NoError(t, err)
	require.Len(t, objs, 4)

	// more.json sorts before objects.yaml.
	api := objs[0]
	assert.Equal(t, "Deployment", api.GetKind())
	replicas, found, err := unstructured.NestedInt64(api.Object, "spec", "replicas")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), replicas)
	assert.Equal(t, 0.5, resource.Get(api, "spec.ratio"))
}

func TestLoadFiles_Missing(t *testing.T) {
	_, err := resource.LoadFiles(filepath.Join("testdata", "nope.yaml"))
	assert.Error(t, err)
}

func TestDecode_RejectsNonObjects(t *testing.T) {
	_, err := resource.Decode(strings.NewReader("name: orphan\n"))
	assert.ErrorIs(t, err, resource.ErrInvalidObject)

	_, err = resource.Decode(strings.NewReader("apiVersion: v1\nkind: List\nitems:\n  - name: x\n"))
	assert.ErrorIs(t, err, resource.ErrInvalidObject)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := resource.Decode(strings.NewReader("apiVersion: v1\nkind: [unterminated\n"))
	assert.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	objs, err := resource.Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, objs)
}
