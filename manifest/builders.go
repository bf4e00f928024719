package manifest

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Port is a service port. TargetPort defaults to Port.
type Port struct {
	Name       string
	Port       int32
	TargetPort int32
	Protocol   string
}

func (p Port) content() map[string]any {
	target := p.TargetPort
	if target == 0 {
		target = p.Port
	}
	out := map[string]any{
		"port":       int64(p.Port),
		"targetPort": int64(target),
	}
	if p.Name != "" {
		out["name"] = p.Name
	}
	if p.Protocol != "" {
		out["protocol"] = p.Protocol
	}
	return out
}

// ServicePorts returns one Port per number, each targeting the same port on
// the pod. When there is more than one, each is named "port-<n>", since
// services with several ports need names to tell their endpoints apart.
func ServicePorts(ports ...int32) []Port {
	out := make([]Port, 0, len(ports))
	for _, p := range ports {
		port := Port{Port: p}
		if len(ports) > 1 {
			port.Name = fmt.Sprintf("port-%d", p)
		}
		out = append(out, port)
	}
	return out
}

// ConfigMap returns a v1 ConfigMap holding data.
func ConfigMap(name string, data map[string]string) *unstructured.Unstructured {
	obj := newObject("v1", "ConfigMap", name)
	content := make(map[string]any, len(data))
	for k, v := range data {
		content[k] = v
	}
	obj.Object["data"] = content
	return obj
}

// Container returns a container spec exposing the given container ports.
func Container(name, image string, ports ...int32) map[string]any {
	c := map[string]any{"name": name, "image": image}
	if len(ports) > 0 {
		list := make([]any, 0, len(ports))
		for _, p := range ports {
			list = append(list, map[string]any{"containerPort": int64(p)})
		}
		c["ports"] = list
	}
	return c
}

// Deployment returns an apps/v1 Deployment running containers, with labels
// on the deployment, its selector and its pod template.
func Deployment(name string, labels map[string]string, replicas int32, containers ...map[string]any) *unstructured.Unstructured {
	if len(labels) == 0 {
		labels = map[string]string{"app": name}
	}
	obj := newObject("apps/v1", "Deployment", name)
	obj.SetLabels(labels)

	list := make([]any, 0, len(containers))
	for _, c := range containers {
		list = append(list, c)
	}
	obj.Object["spec"] = map[string]any{
		"replicas":             int64(replicas),
		"revisionHistoryLimit": int64(10),
		"selector":             map[string]any{"matchLabels": stringMap(labels)},
		"template": map[string]any{
			"metadata": map[string]any{"labels": stringMap(labels)},
			"spec":     map[string]any{"containers": list},
		},
	}
	return obj
}

// ClusterIPService returns a service reachable only from inside the cluster,
// sending traffic to pods matching selector. Labels default to app=name.
func ClusterIPService(name string, ports []Port, selector, labels map[string]string) *unstructured.Unstructured {
	return service(name, "ClusterIP", ports, selector, labels)
}

// LoadBalancerService returns a service exposed through the cloud provider's
// load balancer. policy sets externalTrafficPolicy ("Local" or "Cluster")
// when non-empty.
func LoadBalancerService(name string, ports []Port, selector, labels map[string]string, policy string) *unstructured.Unstructured {
	svc := service(name, "LoadBalancer", ports, selector, labels)
	if policy != "" {
		svc.Object["spec"].(map[string]any)["externalTrafficPolicy"] = policy
	}
	return svc
}

// ExposeToCluster returns a ClusterIP service named after the workload d,
// selecting its pod template labels.
func ExposeToCluster(d *unstructured.Unstructured, ports ...Port) *unstructured.Unstructured {
	selector, _, _ := unstructured.NestedStringMap(d.Object, "spec", "template", "metadata", "labels")
	svc := ClusterIPService(d.GetName(), ports, selector, d.GetLabels())
	if ns := d.GetNamespace(); ns != "" {
		svc.SetNamespace(ns)
	}
	return svc
}

func service(name, typ string, ports []Port, selector, labels map[string]string) *unstructured.Unstructured {
	if len(labels) == 0 {
		labels = map[string]string{"app": name}
	}
	obj := newObject("v1", "Service", name)
	obj.SetLabels(labels)

	list := make([]any, 0, len(ports))
	for _, p := range ports {
		list = append(list, p.content())
	}
	obj.Object["spec"] = map[string]any{
		"type":     typ,
		"ports":    list,
		"selector": stringMap(selector),
	}
	return obj
}

func newObject(apiVersion, kind, name string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": apiVersion,
		"kind":       kind,
		"metadata":   map[string]any{"name": name},
	}}
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
