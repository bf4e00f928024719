package resource_test

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func pod(namespace, name string, labels map[string]string, images ...string) *unstructured.Unstructured {
	containers := make([]any, 0, len(images))
	for i, image := range images {
		containers = append(containers, map[string]any{
			"name":  "c" + string(rune('0'+i)),
			"image": image,
		})
	}
	obj := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "v1",
		"kind":       "Pod",
		"metadata": map[string]any{
			"name":      name,
			"namespace": namespace,
		},
		"spec": map[string]any{
			"containers": containers,
		},
		"status": map[string]any{
			"phase": "Running",
		},
	}}
	if labels != nil {
		obj.SetLabels(labels)
	}
	return obj
}
