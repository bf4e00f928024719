// Package resource adapts a Kubernetes-style cluster API to the [query]
// sequence engine and provides helpers for working with resource objects in
// their unstructured form.
//
// # Sources
//
// [List] and [Watch] turn a controller-runtime client (or anything with the
// same List/Watch methods, such as [memory.Cluster]) into lazy sequences:
//
//	pods := resource.List(ctx, c, resource.Pods, client.InNamespace("default"))
//	running := pods.Where(resource.FieldEquals("status.phase", "Running"))
//	names := query.Select(running, (*unstructured.Unstructured).GetName)
//
// The API call is made when a traversal starts, not when the sequence is
// built, and again for every traversal.
//
// # Paths
//
// [Get], [Set], [Has], [Forget] and [Dot] address nested fields with
// dot-separated paths. Numeric segments index into lists, and a literal dot
// inside a key is escaped with a backslash:
//
//	resource.Get(pod, "spec.containers.0.image")
//	resource.Get(pod, `metadata.labels.app\.kubernetes\.io/name`)
//
// # Manifests
//
// [Decode] and [LoadFiles] read multi-document YAML or JSON into
// unstructured objects suitable for [memory.Cluster] or for printing.
//
// [memory.Cluster]: github.com/hasbyte1/go-kube-query/resource/memory.Cluster
// [query]: github.com/hasbyte1/go-kube-query/query
package resource
