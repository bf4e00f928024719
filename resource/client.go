package resource

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/watch"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/hasbyte1/go-kube-query/query"
)

// Lister lists resources of the kind named by the list's GroupVersionKind.
// controller-runtime's client.Client satisfies it.
type Lister interface {
	List(ctx context.Context, list client.ObjectList, opts ...client.ListOption) error
}

// Watcher opens a watch on resources of the kind named by the list's
// GroupVersionKind. controller-runtime's client.WithWatch satisfies it.
type Watcher interface {
	Watch(ctx context.Context, list client.ObjectList, opts ...client.ListOption) (watch.Interface, error)
}

// Client lists and watches resources.
type Client interface {
	Lister
	Watcher
}

// Event is a single change observed by [Watch].
type Event struct {
	Type   watch.EventType
	Object *unstructured.Unstructured
}

// List returns a sequence of the resources of kind gvk matching opts.
//
// Each traversal issues one List call when it starts. The items of that
// response are yielded in the order the server returned them. A failed call
// is reported by the first MoveNext.
func List(ctx context.Context, c Lister, gvk schema.GroupVersionKind, opts ...client.ListOption) query.Enumerable[*unstructured.Unstructured] {
	return query.Create(func() query.Enumerator[*unstructured.Unstructured] {
		var (
			items []unstructured.Unstructured
			next  int
		)
		return query.NewEnumerator(
			func() error {
				list := &unstructured.UnstructuredList{}
				list.SetGroupVersionKind(ListKind(gvk))
				if err := c.List(ctx, list, opts...); err != nil {
					return fmt.Errorf("list %s: %w", gvk.Kind, err)
				}
				items = list.Items
				logr.FromContextOrDiscard(ctx).V(1).Info("listed resources",
					"kind", gvk.String(), "count", len(items))
				return nil
			},
			func(y *query.Yielder[*unstructured.Unstructured]) (bool, error) {
				if next >= len(items) {
					return y.Break(), nil
				}
				obj := &items[next]
				next++
				if obj.GetKind() == "" {
					obj.SetGroupVersionKind(gvk)
				}
				return y.Yield(obj), nil
			},
			nil,
		)
	})
}

// Watch returns a sequence of change events for resources of kind gvk
// matching opts.
//
// Each traversal opens its own watch and stops it when the traversal ends.
// The sequence ends when the server closes the watch or ctx is done; an
// Error event from the server ends it with that error. Bookmark events are
// skipped.
func Watch(ctx context.Context, c Watcher, gvk schema.GroupVersionKind, opts ...client.ListOption) query.Enumerable[Event] {
	return query.Create(func() query.Enumerator[Event] {
		var w watch.Interface
		log := logr.FromContextOrDiscard(ctx).WithValues("kind", gvk.String())
		return query.NewEnumerator(
			func() error {
				list := &unstructured.UnstructuredList{}
				list.SetGroupVersionKind(ListKind(gvk))
				var err error
				if w, err = c.Watch(ctx, list, opts...); err != nil {
					return fmt.Errorf("watch %s: %w", gvk.Kind, err)
				}
				log.V(1).Info("watch started")
				return nil
			},
			func(y *query.Yielder[Event]) (bool, error) {
				for {
					select {
					case <-ctx.Done():
						return y.Break(), nil
					case ev, ok := <-w.ResultChan():
						if !ok {
							return y.Break(), nil
						}
						switch ev.Type {
						case watch.Bookmark:
							continue
						case watch.Error:
							return false, fmt.Errorf("watch %s: %w", gvk.Kind, apierrors.FromObject(ev.Object))
						}
						obj, err := toUnstructured(ev.Object, gvk)
						if err != nil {
							return false, err
						}
						return y.Yield(Event{Type: ev.Type, Object: obj}), nil
					}
				}
			},
			func() {
				if w != nil {
					w.Stop()
					log.V(1).Info("watch stopped")
				}
			},
		)
	})
}

// ToUnstructured converts a typed API object into its unstructured form.
// Unstructured objects are returned as is.
func ToUnstructured(obj runtime.Object) (*unstructured.Unstructured, error) {
	return toUnstructured(obj, schema.GroupVersionKind{})
}

// toUnstructured converts obj, stamping fallback as its kind when obj
// carries no type information.
func toUnstructured(obj runtime.Object, fallback schema.GroupVersionKind) (*unstructured.Unstructured, error) {
	if u, ok := obj.(*unstructured.Unstructured); ok {
		if u.GetKind() == "" && !fallback.Empty() {
			u.SetGroupVersionKind(fallback)
		}
		return u, nil
	}
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("convert %T: %w", obj, err)
	}
	u := &unstructured.Unstructured{Object: content}
	if gvk := obj.GetObjectKind().GroupVersionKind(); !gvk.Empty() {
		u.SetGroupVersionKind(gvk)
	} else if !fallback.Empty() {
		u.SetGroupVersionKind(fallback)
	}
	return u, nil
}
