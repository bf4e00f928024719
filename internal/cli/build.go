package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hasbyte1/go-kube-query/manifest"
	"github.com/hasbyte1/go-kube-query/query"
)

type buildOptions struct {
	image    string
	replicas int32
	ports    []int32
	service  string
	config   []string
	hash     bool
	labels   []string
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build NAME",
		Short: "Print the manifests for a deployed application",
		Long: `Print a Deployment running one container, plus an optional Service
exposing its ports and an optional ConfigMap mounted at /etc/NAME.

Prints YAML unless -o is given. Nothing is sent to a cluster.`,
		Example: `  kq build web --image nginx:1.27 --port 80
  kq build api --image api:v2 --port 8080 --service loadbalancer \
      --config LOG_LEVEL=debug --hash -n staging`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			objs, err := opts.build(args[0])
			if err != nil {
				return err
			}

			var transforms []manifest.Transform
			if cmd.Flags().Changed("namespace") {
				transforms = append(transforms, manifest.InNamespace(rootOpts.Namespace))
			}
			final, err := query.TrySelect(query.From(objs), manifest.Apply(manifest.Chain(transforms...))).ToSlice()
			if err != nil {
				return WrapExitError(ExitFailure, "build "+args[0], err)
			}

			format := rootOpts.Output
			if !cmd.Flags().Changed("output") {
				format = "yaml"
			}
			return printObjects(cmd.OutOrStdout(), cmd.ErrOrStderr(), format, final)
		},
	}

	cmd.Flags().StringVar(&opts.image, "image", "", "container image (required)")
	cmd.Flags().Int32Var(&opts.replicas, "replicas", 1, "number of replicas")
	cmd.Flags().Int32SliceVar(&opts.ports, "port", nil, "container port to expose (repeatable)")
	cmd.Flags().StringVar(&opts.service, "service", "", "service type: clusterip, loadbalancer or none (default clusterip when --port is set)")
	cmd.Flags().StringArrayVar(&opts.config, "config", nil, "KEY=VALUE stored in a mounted ConfigMap (repeatable)")
	cmd.Flags().BoolVar(&opts.hash, "hash", false, "suffix the ConfigMap name with a hash of its data")
	cmd.Flags().StringArrayVar(&opts.labels, "label", nil, "KEY=VALUE label for the app (repeatable, default app=NAME)")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func (o *buildOptions) build(name string) ([]*unstructured.Unstructured, error) {
	labels, err := parsePairs("--label", o.labels)
	if err != nil {
		return nil, err
	}
	data, err := parsePairs("--config", o.config)
	if err != nil {
		return nil, err
	}

	service := o.service
	if service == "" {
		service = "none"
		if len(o.ports) > 0 {
			service = "clusterip"
		}
	}
	switch service {
	case "clusterip", "loadbalancer", "none":
	default:
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("invalid --service %q: want clusterip, loadbalancer or none", o.service))
	}
	if service != "none" && len(o.ports) == 0 {
		return nil, NewExitError(ExitCommandError, "--service "+service+" requires --port")
	}

	d := manifest.Deployment(name, labels, o.replicas, manifest.Container(name, o.image, o.ports...))
	var objs []*unstructured.Unstructured

	if len(data) > 0 {
		cm := manifest.ConfigMap(name+"-config", data)
		if o.hash {
			if err := manifest.HashSuffix()(cm); err != nil {
				return nil, WrapExitError(ExitFailure, "hash config", err)
			}
		}
		if err := manifest.MountConfigMap(cm.GetName(), "/etc/"+name)(d); err != nil {
			return nil, WrapExitError(ExitFailure, "mount config", err)
		}
		objs = append(objs, cm)
	}
	objs = append(objs, d)

	ports := manifest.ServicePorts(o.ports...)
	switch service {
	case "clusterip":
		objs = append(objs, manifest.ExposeToCluster(d, ports...))
	case "loadbalancer":
		selector := d.GetLabels()
		objs = append(objs, manifest.LoadBalancerService(name, ports, selector, selector, ""))
	}
	return objs, nil
}

// parsePairs parses KEY=VALUE flag values.
func parsePairs(flag string, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q: want KEY=VALUE", flag, p))
		}
		out[k] = v
	}
	return out, nil
}
