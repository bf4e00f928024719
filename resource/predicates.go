package resource

import (
	"fmt"
	"regexp"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
)

// Predicate reports whether an object matches. It can be passed directly to
// Where on a sequence of objects.
type Predicate func(*unstructured.Unstructured) bool

// Selector parses a label selector ("app=web,tier!=cache", "env in (a,b)")
// into a Predicate.
func Selector(expr string) (Predicate, error) {
	sel, err := labels.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse selector %q: %w", expr, err)
	}
	return func(obj *unstructured.Unstructured) bool {
		return sel.Matches(labels.Set(obj.GetLabels()))
	}, nil
}

// MatchingLabels matches objects carrying every label in set, the way a
// Service or workload selector does. An empty set matches nothing.
func MatchingLabels(set map[string]string) Predicate {
	if len(set) == 0 {
		return func(*unstructured.Unstructured) bool { return false }
	}
	sel := labels.SelectorFromSet(set)
	return func(obj *unstructured.Unstructured) bool {
		return sel.Matches(labels.Set(obj.GetLabels()))
	}
}

// InNamespace matches objects in namespace. The empty namespace matches
// everything.
func InNamespace(namespace string) Predicate {
	return func(obj *unstructured.Unstructured) bool {
		return namespace == "" || obj.GetNamespace() == namespace
	}
}

// FieldEquals matches objects whose value at path formats to value.
func FieldEquals(path, value string) Predicate {
	return func(obj *unstructured.Unstructured) bool {
		return Has(obj, path) && String(obj, path) == value
	}
}

// NameMatches matches objects whose name matches re.
func NameMatches(re *regexp.Regexp) Predicate {
	return func(obj *unstructured.Unstructured) bool {
		return re.MatchString(obj.GetName())
	}
}

// AnyFieldMatches matches objects with at least one leaf value, as flattened
// by [Dot], whose formatted form matches re.
func AnyFieldMatches(re *regexp.Regexp) Predicate {
	return func(obj *unstructured.Unstructured) bool {
		for _, v := range Dot(obj) {
			if re.MatchString(fmt.Sprint(v)) {
				return true
			}
		}
		return false
	}
}

// And matches objects that match every predicate.
func And(predicates ...Predicate) Predicate {
	return func(obj *unstructured.Unstructured) bool {
		for _, p := range predicates {
			if !p(obj) {
				return false
			}
		}
		return true
	}
}
