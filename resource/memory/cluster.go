// Package memory provides a thread-safe in-memory cluster implementing
// [resource.Client].
//
// It serves manifests loaded from disk and backs tests. Objects are kept in
// unstructured form; no admission, defaulting or garbage collection takes
// place. Stored objects must hold only the value types unstructured objects
// can deep-copy (see [resource.Decode]).
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/watch"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/hasbyte1/go-kube-query/resource"
)

// ErrUnsupportedList is returned by List and Watch for list types other than
// *unstructured.UnstructuredList, or lists whose kind does not end in "List".
var ErrUnsupportedList = errors.New("memory: unsupported list type")

// eventQueueLength bounds the events buffered per watcher before writers
// block.
const eventQueueLength = 100

type key struct {
	gvk       schema.GroupVersionKind
	namespace string
	name      string
}

func keyOf(obj *unstructured.Unstructured) key {
	return key{gvk: obj.GroupVersionKind(), namespace: obj.GetNamespace(), name: obj.GetName()}
}

// Cluster is a thread-safe in-memory store of resource objects.
type Cluster struct {
	mu      sync.RWMutex
	objects map[key]*unstructured.Unstructured
	version uint64 // last resourceVersion handed out

	events    *watch.Broadcaster
	closeOnce sync.Once
	now       func() time.Time
}

var _ resource.Client = (*Cluster)(nil)

// New creates a [Cluster] holding objs.
func New(objs ...*unstructured.Unstructured) (*Cluster, error) {
	c := &Cluster{
		objects: make(map[key]*unstructured.Unstructured),
		events:  watch.NewBroadcaster(eventQueueLength, watch.WaitIfChannelFull),
		now:     time.Now,
	}
	if err := c.Apply(context.Background(), objs...); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Close ends every open watch. The cluster can still be read and written
// afterwards, but no further events are delivered.
func (c *Cluster) Close() {
	c.closeOnce.Do(c.events.Shutdown)
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// Create stores a new object. Returns an AlreadyExists API error when an
// object of the same kind, namespace and name is present.
func (c *Cluster) Create(ctx context.Context, obj *unstructured.Unstructured) error {
	if err := validate(obj); err != nil {
		return err
	}
	c.mu.Lock()
	if _, exists := c.objects[keyOf(obj)]; exists {
		c.mu.Unlock()
		return apierrors.NewAlreadyExists(groupResource(obj.GroupVersionKind()), obj.GetName())
	}
	ev := c.store(obj)
	c.mu.Unlock()

	c.emit(ctx, ev)
	return nil
}

// Apply creates or replaces each object. A replaced object keeps its uid and
// creation timestamp. Every write gets a new resourceVersion.
func (c *Cluster) Apply(ctx context.Context, objs ...*unstructured.Unstructured) error {
	for _, obj := range objs {
		if err := validate(obj); err != nil {
			return err
		}
	}
	c.mu.Lock()
	events := make([]watch.Event, 0, len(objs))
	for _, obj := range objs {
		events = append(events, c.store(obj))
	}
	c.mu.Unlock()

	c.emit(ctx, events...)
	return nil
}

// Delete removes an object. Returns a NotFound API error when absent.
func (c *Cluster) Delete(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) error {
	k := key{gvk: gvk, namespace: namespace, name: name}

	c.mu.Lock()
	obj, ok := c.objects[k]
	if !ok {
		c.mu.Unlock()
		return apierrors.NewNotFound(groupResource(gvk), name)
	}
	delete(c.objects, k)
	c.version++
	gone := obj.DeepCopy()
	gone.SetResourceVersion(strconv.FormatUint(c.version, 10))
	c.mu.Unlock()

	c.emit(ctx, watch.Event{Type: watch.Deleted, Object: gone})
	return nil
}

// store writes a copy of obj and returns the event describing the write.
// c.mu must be held.
func (c *Cluster) store(obj *unstructured.Unstructured) watch.Event {
	k := keyOf(obj)
	cp := obj.DeepCopy()
	c.version++
	cp.SetResourceVersion(strconv.FormatUint(c.version, 10))

	evType := watch.Added
	if prev, exists := c.objects[k]; exists {
		evType = watch.Modified
		cp.SetUID(prev.GetUID())
		cp.SetCreationTimestamp(prev.GetCreationTimestamp())
	} else {
		if cp.GetUID() == "" {
			cp.SetUID(types.UID(uuid.NewString()))
		}
		if ts := cp.GetCreationTimestamp(); ts.IsZero() {
			cp.SetCreationTimestamp(metav1.NewTime(c.now().UTC().Truncate(time.Second)))
		}
	}
	c.objects[k] = cp
	return watch.Event{Type: evType, Object: cp.DeepCopy()}
}

func (c *Cluster) emit(ctx context.Context, events ...watch.Event) {
	log := logr.FromContextOrDiscard(ctx)
	for _, ev := range events {
		obj := ev.Object.(*unstructured.Unstructured)
		log.V(1).Info("cluster write", "event", ev.Type, "kind", obj.GetKind(),
			"namespace", obj.GetNamespace(), "name", obj.GetName(),
			"resourceVersion", obj.GetResourceVersion())
		if err := c.events.Action(ev.Type, ev.Object); err != nil {
			log.V(1).Info("event dropped", "reason", err.Error())
		}
	}
}

func validate(obj *unstructured.Unstructured) error {
	if obj.GetKind() == "" || obj.GetAPIVersion() == "" || obj.GetName() == "" {
		return fmt.Errorf("%w: apiVersion, kind and metadata.name are required", resource.ErrInvalidObject)
	}
	return nil
}

func groupResource(gvk schema.GroupVersionKind) schema.GroupResource {
	plural, _ := meta.UnsafeGuessKindToResource(gvk)
	return plural.GroupResource()
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// Get returns a copy of an object. Returns a NotFound API error when absent.
func (c *Cluster) Get(_ context.Context, gvk schema.GroupVersionKind, namespace, name string) (*unstructured.Unstructured, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	obj, ok := c.objects[key{gvk: gvk, namespace: namespace, name: name}]
	if !ok {
		return nil, apierrors.NewNotFound(groupResource(gvk), name)
	}
	return obj.DeepCopy(), nil
}

// List fills list, which must be an *unstructured.UnstructuredList whose kind
// names the item kind plus "List", with copies of the matching objects
// ordered by namespace and name. Namespace, label selector and field
// selector options are honoured; field selectors may address any path.
func (c *Cluster) List(_ context.Context, list client.ObjectList, opts ...client.ListOption) error {
	ul, gvk, err := listTarget(list)
	if err != nil {
		return err
	}
	lo := (&client.ListOptions{}).ApplyOptions(opts)

	c.mu.RLock()
	defer c.mu.RUnlock()

	ul.Items = ul.Items[:0]
	for _, obj := range c.matching(gvk, lo) {
		ul.Items = append(ul.Items, *obj.DeepCopy())
	}
	ul.SetResourceVersion(strconv.FormatUint(c.version, 10))
	return nil
}

// matching returns the stored objects of kind gvk matching lo, sorted.
// c.mu must be held.
func (c *Cluster) matching(gvk schema.GroupVersionKind, lo *client.ListOptions) []*unstructured.Unstructured {
	var out []*unstructured.Unstructured
	for k, obj := range c.objects {
		if k.gvk == gvk && matches(obj, lo) {
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if a, b := out[i].GetNamespace(), out[j].GetNamespace(); a != b {
			return a < b
		}
		return out[i].GetName() < out[j].GetName()
	})
	return out
}

func listTarget(list client.ObjectList) (*unstructured.UnstructuredList, schema.GroupVersionKind, error) {
	ul, ok := list.(*unstructured.UnstructuredList)
	if !ok {
		return nil, schema.GroupVersionKind{}, fmt.Errorf("%w: %T", ErrUnsupportedList, list)
	}
	gvk := ul.GroupVersionKind()
	if !strings.HasSuffix(gvk.Kind, "List") || gvk.Kind == "List" {
		return nil, schema.GroupVersionKind{}, fmt.Errorf("%w: kind %q", ErrUnsupportedList, gvk.Kind)
	}
	gvk.Kind = strings.TrimSuffix(gvk.Kind, "List")
	return ul, gvk, nil
}

func matches(obj *unstructured.Unstructured, lo *client.ListOptions) bool {
	if lo.Namespace != "" && obj.GetNamespace() != lo.Namespace {
		return false
	}
	if lo.LabelSelector != nil && !lo.LabelSelector.Matches(labels.Set(obj.GetLabels())) {
		return false
	}
	if lo.FieldSelector != nil && !lo.FieldSelector.Matches(objectFields{obj}) {
		return false
	}
	return true
}

// objectFields exposes an object's paths to field selectors.
type objectFields struct{ obj *unstructured.Unstructured }

func (f objectFields) Has(field string) bool  { return resource.Has(f.obj, field) }
func (f objectFields) Get(field string) string { return resource.String(f.obj, field) }
