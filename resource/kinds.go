package resource

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Well-known kinds.
var (
	Pods                   = schema.GroupVersionKind{Version: "v1", Kind: "Pod"}
	Services               = schema.GroupVersionKind{Version: "v1", Kind: "Service"}
	ConfigMaps             = schema.GroupVersionKind{Version: "v1", Kind: "ConfigMap"}
	Secrets                = schema.GroupVersionKind{Version: "v1", Kind: "Secret"}
	Namespaces             = schema.GroupVersionKind{Version: "v1", Kind: "Namespace"}
	Nodes                  = schema.GroupVersionKind{Version: "v1", Kind: "Node"}
	Events                 = schema.GroupVersionKind{Version: "v1", Kind: "Event"}
	ServiceAccounts        = schema.GroupVersionKind{Version: "v1", Kind: "ServiceAccount"}
	PersistentVolumes      = schema.GroupVersionKind{Version: "v1", Kind: "PersistentVolume"}
	PersistentVolumeClaims = schema.GroupVersionKind{Version: "v1", Kind: "PersistentVolumeClaim"}
	Deployments            = schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "Deployment"}
	ReplicaSets            = schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "ReplicaSet"}
	StatefulSets           = schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "StatefulSet"}
	DaemonSets             = schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "DaemonSet"}
	Jobs                   = schema.GroupVersionKind{Group: "batch", Version: "v1", Kind: "Job"}
	CronJobs               = schema.GroupVersionKind{Group: "batch", Version: "v1", Kind: "CronJob"}
	Ingresses              = schema.GroupVersionKind{Group: "networking.k8s.io", Version: "v1", Kind: "Ingress"}
	Roles                  = schema.GroupVersionKind{Group: "rbac.authorization.k8s.io", Version: "v1", Kind: "Role"}
	RoleBindings           = schema.GroupVersionKind{Group: "rbac.authorization.k8s.io", Version: "v1", Kind: "RoleBinding"}
	ClusterRoles           = schema.GroupVersionKind{Group: "rbac.authorization.k8s.io", Version: "v1", Kind: "ClusterRole"}
	ClusterRoleBindings    = schema.GroupVersionKind{Group: "rbac.authorization.k8s.io", Version: "v1", Kind: "ClusterRoleBinding"}
	CertificateRequests    = schema.GroupVersionKind{Group: "certificates.k8s.io", Version: "v1", Kind: "CertificateSigningRequest"}
)

// aliases maps lower-case short names, singulars and plurals to kinds.
var aliases = map[string]schema.GroupVersionKind{}

func init() {
	register := func(gvk schema.GroupVersionKind, names ...string) {
		kind := strings.ToLower(gvk.Kind)
		aliases[kind] = gvk
		for _, n := range names {
			aliases[n] = gvk
		}
	}
	register(Pods, "po", "pods")
	register(Services, "svc", "services")
	register(ConfigMaps, "cm", "configmaps")
	register(Secrets, "secrets")
	register(Namespaces, "ns", "namespaces")
	register(Nodes, "no", "nodes")
	register(Events, "ev", "events")
	register(ServiceAccounts, "sa", "serviceaccounts")
	register(PersistentVolumes, "pv", "persistentvolumes")
	register(PersistentVolumeClaims, "pvc", "persistentvolumeclaims")
	register(Deployments, "deploy", "deployments")
	register(ReplicaSets, "rs", "replicasets")
	register(StatefulSets, "sts", "statefulsets")
	register(DaemonSets, "ds", "daemonsets")
	register(Jobs, "jobs")
	register(CronJobs, "cj", "cronjobs")
	register(Ingresses, "ing", "ingresses")
	register(Roles, "roles")
	register(RoleBindings, "rolebindings")
	register(ClusterRoles, "clusterroles")
	register(ClusterRoleBindings, "clusterrolebindings")
	register(CertificateRequests, "csr", "certificatesigningrequests")
}

// ParseKind resolves a user-supplied kind name. It accepts short names
// ("po", "deploy"), singular or plural resource names in any case ("Pods",
// "deployment") and the fully-qualified form Kind.version.group
// ("Widget.v1alpha1.example.com").
func ParseKind(name string) (schema.GroupVersionKind, error) {
	if gvk, ok := aliases[strings.ToLower(name)]; ok {
		return gvk, nil
	}
	if gvk, _ := schema.ParseKindArg(name); gvk != nil && gvk.Version != "" {
		return *gvk, nil
	}
	return schema.GroupVersionKind{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// ListKind returns the list kind for gvk, e.g. PodList for Pod.
func ListKind(gvk schema.GroupVersionKind) schema.GroupVersionKind {
	return gvk.GroupVersion().WithKind(gvk.Kind + "List")
}

var clusterScoped = map[schema.GroupKind]bool{
	Namespaces.GroupKind():          true,
	Nodes.GroupKind():               true,
	PersistentVolumes.GroupKind():   true,
	ClusterRoles.GroupKind():        true,
	ClusterRoleBindings.GroupKind(): true,
	CertificateRequests.GroupKind(): true,
}

// IsClusterScoped reports whether gvk is a well-known kind that lives outside
// any namespace.
func IsClusterScoped(gvk schema.GroupVersionKind) bool {
	return clusterScoped[gvk.GroupKind()]
}
