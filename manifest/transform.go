package manifest

import (
	"encoding/hex"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/hasbyte1/go-kube-query/resource"
)

// Transform edits obj in place.
type Transform func(obj *unstructured.Unstructured) error

// Chain runs transforms in order, stopping at the first error.
func Chain(transforms ...Transform) Transform {
	return func(obj *unstructured.Unstructured) error {
		for _, t := range transforms {
			if err := t(obj); err != nil {
				return err
			}
		}
		return nil
	}
}

// Apply returns a mapper for query.TrySelect that runs t on a copy of each
// object, leaving the source untouched.
func Apply(t Transform) func(*unstructured.Unstructured) (*unstructured.Unstructured, error) {
	return func(obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
		cp := obj.DeepCopy()
		if err := t(cp); err != nil {
			return nil, fmt.Errorf("%s %s: %w", cp.GetKind(), cp.GetName(), err)
		}
		return cp, nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Metadata
// ─────────────────────────────────────────────────────────────────────────────

// Merge deep-merges patch into the object. patch must hold only values
// unstructured objects can deep-copy; it is copied, not shared.
func Merge(patch map[string]any) Transform {
	return func(obj *unstructured.Unstructured) error {
		if obj.Object == nil {
			obj.Object = make(map[string]any)
		}
		resource.Merge(obj.Object, runtime.DeepCopyJSON(patch))
		return nil
	}
}

// WithLabels adds labels, overwriting existing values for the same keys.
func WithLabels(labels map[string]string) Transform {
	return func(obj *unstructured.Unstructured) error {
		obj.SetLabels(mergeStrings(obj.GetLabels(), labels))
		return nil
	}
}

// WithAnnotations adds annotations, overwriting existing values for the same
// keys.
func WithAnnotations(annotations map[string]string) Transform {
	return func(obj *unstructured.Unstructured) error {
		obj.SetAnnotations(mergeStrings(obj.GetAnnotations(), annotations))
		return nil
	}
}

// InNamespace sets the namespace.
func InNamespace(namespace string) Transform {
	return func(obj *unstructured.Unstructured) error {
		obj.SetNamespace(namespace)
		return nil
	}
}

func mergeStrings(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// ─────────────────────────────────────────────────────────────────────────────
// Workloads
// ─────────────────────────────────────────────────────────────────────────────

// podSpecPath returns where kind keeps its pod spec.
func podSpecPath(kind string) (string, bool) {
	switch kind {
	case "Pod":
		return "spec", true
	case "Deployment", "ReplicaSet", "StatefulSet", "DaemonSet", "Job", "ReplicationController":
		return "spec.template.spec", true
	case "CronJob":
		return "spec.jobTemplate.spec.template.spec", true
	}
	return "", false
}

// WithReplicas sets spec.replicas on scalable workloads.
func WithReplicas(n int32) Transform {
	return func(obj *unstructured.Unstructured) error {
		switch obj.GetKind() {
		case "Deployment", "ReplicaSet", "StatefulSet", "ReplicationController":
			return resource.Set(obj, "spec.replicas", int64(n))
		}
		return fmt.Errorf("%w: %s has no replicas", ErrUnsupportedKind, obj.GetKind())
	}
}

// WithImage sets the image of the named container.
func WithImage(container, image string) Transform {
	return editContainer(container, func(c map[string]any) {
		c["image"] = image
	})
}

// WithEnv appends an environment variable to the named container.
func WithEnv(container, name, value string) Transform {
	return editContainer(container, func(c map[string]any) {
		env, _ := c["env"].([]any)
		c["env"] = append(env, map[string]any{"name": name, "value": value})
	})
}

// MountConfigMap adds a volume backed by the named ConfigMap to the pod
// template and mounts it read-only at mountPath in every container.
func MountConfigMap(configMap, mountPath string) Transform {
	return func(obj *unstructured.Unstructured) error {
		path, ok := podSpecPath(obj.GetKind())
		if !ok {
			return fmt.Errorf("%w: %s has no pod template", ErrUnsupportedKind, obj.GetKind())
		}
		volumes := resource.Slice(obj, path+".volumes")
		volumes = append(volumes, map[string]any{
			"name":      configMap,
			"configMap": map[string]any{"name": configMap},
		})
		if err := resource.Set(obj, path+".volumes", volumes); err != nil {
			return err
		}
		for _, c := range resource.Maps(obj, path+".containers") {
			mounts, _ := c["volumeMounts"].([]any)
			c["volumeMounts"] = append(mounts, map[string]any{
				"name":      configMap,
				"mountPath": mountPath,
				"readOnly":  true,
			})
		}
		return nil
	}
}

func editContainer(name string, edit func(c map[string]any)) Transform {
	return func(obj *unstructured.Unstructured) error {
		path, ok := podSpecPath(obj.GetKind())
		if !ok {
			return fmt.Errorf("%w: %s has no containers", ErrUnsupportedKind, obj.GetKind())
		}
		for _, c := range resource.Maps(obj, path+".containers") {
			if c["name"] == name {
				edit(c)
				return nil
			}
		}
		return fmt.Errorf("%w: %q", ErrContainerNotFound, name)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Content hashing
// ─────────────────────────────────────────────────────────────────────────────

// hashLength is the number of hex characters appended by HashSuffix.
const hashLength = 10

// HashSuffix appends a digest of a ConfigMap's or Secret's data to its name,
// so that changing the content produces a new object and rolls the workloads
// that mount it. The digest is the BLAKE2b-256 of data and binaryData.
func HashSuffix() Transform {
	return func(obj *unstructured.Unstructured) error {
		switch obj.GetKind() {
		case "ConfigMap", "Secret":
		default:
			return fmt.Errorf("%w: cannot hash %s", ErrUnsupportedKind, obj.GetKind())
		}
		obj.SetName(obj.GetName() + "-" + ContentHash(obj))
		return nil
	}
}

// ContentHash returns the truncated hex digest HashSuffix appends.
func ContentHash(obj *unstructured.Unstructured) string {
	h, _ := blake2b.New256(nil)
	for _, field := range []string{"data", "binaryData", "stringData"} {
		values, _ := obj.Object[field].(map[string]any)
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		h.Write([]byte(field))
		h.Write([]byte{0})
		for _, k := range keys {
			h.Write([]byte(k))
			h.Write([]byte{0})
			fmt.Fprint(h, values[k])
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:hashLength]
}
