package manifest

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// WriteYAML writes objs as a multi-document YAML stream with two-space
// indentation and sorted keys.
func WriteYAML(w io.Writer, objs ...*unstructured.Unstructured) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, obj := range objs {
		if err := enc.Encode(obj.Object); err != nil {
			return err
		}
	}
	return enc.Close()
}

// WriteJSON writes a single object as is, and any other number of objects
// wrapped in a v1 List.
func WriteJSON(w io.Writer, objs ...*unstructured.Unstructured) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(objs) == 1 {
		return enc.Encode(objs[0].Object)
	}
	items := make([]any, 0, len(objs))
	for _, obj := range objs {
		items = append(items, obj.Object)
	}
	return enc.Encode(map[string]any{
		"apiVersion": "v1",
		"kind":       "List",
		"metadata":   map[string]any{},
		"items":      items,
	})
}
