package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/watch"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Watch opens a watch on the objects of the list's item kind matching opts.
//
// The watch first delivers an Added event for every object already matching,
// then every later write. It ends when Stop is called, ctx is done or the
// cluster is closed.
func (c *Cluster) Watch(ctx context.Context, list client.ObjectList, opts ...client.ListOption) (watch.Interface, error) {
	_, gvk, err := listTarget(list)
	if err != nil {
		return nil, err
	}
	lo := (&client.ListOptions{}).ApplyOptions(opts)

	c.mu.RLock()
	source, err := c.events.Watch()
	if err != nil {
		c.mu.RUnlock()
		return nil, err
	}
	since := c.version
	existing := c.matching(gvk, lo)
	initial := make([]watch.Event, 0, len(existing))
	for _, obj := range existing {
		initial = append(initial, watch.Event{Type: watch.Added, Object: obj.DeepCopy()})
	}
	c.mu.RUnlock()

	logr.FromContextOrDiscard(ctx).V(1).Info("watch opened",
		"kind", gvk.String(), "initial", len(initial), "resourceVersion", since)

	w := &watcher{
		source: source,
		result: make(chan watch.Event),
		done:   make(chan struct{}),
	}
	go w.run(ctx, initial, func(ev watch.Event) (watch.Event, bool) {
		obj, ok := ev.Object.(*unstructured.Unstructured)
		if !ok || obj.GroupVersionKind() != gvk || !matches(obj, lo) {
			return ev, false
		}
		// Writes at or below since are part of the initial snapshot.
		if rv, err := strconv.ParseUint(obj.GetResourceVersion(), 10, 64); err == nil && rv <= since {
			return ev, false
		}
		return watch.Event{Type: ev.Type, Object: obj.DeepCopy()}, true
	})
	return w, nil
}

// watcher replays a snapshot, then forwards filtered broadcaster events.
type watcher struct {
	source   watch.Interface
	result   chan watch.Event
	done     chan struct{}
	stopOnce sync.Once
}

func (w *watcher) ResultChan() <-chan watch.Event { return w.result }

func (w *watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.source.Stop()
	})
}

func (w *watcher) run(ctx context.Context, initial []watch.Event, filter watch.FilterFunc) {
	defer close(w.result)
	defer w.Stop()

	send := func(ev watch.Event) bool {
		select {
		case w.result <- ev:
			return true
		case <-w.done:
		case <-ctx.Done():
		}
		return false
	}
	for _, ev := range initial {
		if !send(ev) {
			return
		}
	}
	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-w.source.ResultChan():
			if !ok {
				return
			}
			if out, keep := filter(ev); keep && !send(out) {
				return
			}
		}
	}
}
