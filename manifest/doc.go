// Package manifest builds and transforms Kubernetes manifests in
// unstructured form.
//
// Builders return ready-to-apply objects:
//
//	web := manifest.Deployment("web", map[string]string{"app": "web"}, 3,
//		manifest.Container("nginx", "nginx:1.27", 80))
//	svc := manifest.ExposeToCluster(web, manifest.ServicePorts(80)...)
//
// A [Transform] edits an object in place. Transforms compose with [Chain]
// and plug into sequence pipelines through [Apply], which works on copies:
//
//	out := query.TrySelect(objs, manifest.Apply(manifest.Chain(
//		manifest.InNamespace("staging"),
//		manifest.WithLabels(map[string]string{"env": "staging"}),
//	)))
//
// [WriteYAML] and [WriteJSON] print objects the way kubectl does.
package manifest
