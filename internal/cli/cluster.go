package cli

import (
	"context"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/runtime/schema"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/config"

	"github.com/hasbyte1/go-kube-query/resource"
	"github.com/hasbyte1/go-kube-query/resource/memory"
)

// connect returns the client commands read from, and a function releasing
// it. With -f the client is an in-memory cluster holding the manifests;
// otherwise it talks to the cluster in the current kubeconfig.
func (o *RootOptions) connect(ctx context.Context) (resource.Client, func(), error) {
	log := logr.FromContextOrDiscard(ctx)

	if len(o.Files) > 0 {
		objs, err := resource.LoadFiles(o.Files...)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "load manifests", err)
		}
		c, err := memory.New(objs...)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "load manifests", err)
		}
		log.V(1).Info("serving manifests from memory", "files", o.Files, "objects", len(objs))
		return c, c.Close, nil
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load kubeconfig", err)
	}
	c, err := client.NewWithWatch(cfg, client.Options{Scheme: clientgoscheme.Scheme})
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "create client", err)
	}
	log.V(1).Info("connected", "host", cfg.Host)
	return c, func() {}, nil
}

// namespace returns the namespace to query, "" for all.
func (o *RootOptions) namespace() string {
	if o.AllNamespaces {
		return ""
	}
	return o.Namespace
}

// listOptions scopes a list or watch of gvk to the selected namespace.
func (o *RootOptions) listOptions(gvk schema.GroupVersionKind) []client.ListOption {
	if ns := o.namespace(); ns != "" && !resource.IsClusterScoped(gvk) {
		return []client.ListOption{client.InNamespace(ns)}
	}
	return nil
}
