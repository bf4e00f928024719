package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hasbyte1/go-kube-query/query"
	"github.com/hasbyte1/go-kube-query/resource"
)

type serviceRow struct {
	namespace string
	name      string
	pods      []string
}

// NewServicesCommand creates the services command.
func NewServicesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "Show the pods each service targets",
		Long: `Show each service and the pods its selector targets in the same
namespace. Services without a selector target nothing.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, release, err := rootOpts.connect(ctx)
			if err != nil {
				return err
			}
			defer release()

			pods, err := resource.List(ctx, c, resource.Pods, rootOpts.listOptions(resource.Pods)...).ToSlice()
			if err != nil {
				return WrapExitError(ExitFailure, "list pods", err)
			}
			candidates := query.From(pods)

			services := resource.List(ctx, c, resource.Services, rootOpts.listOptions(resource.Services)...)
			rows, err := query.TrySelect(services, func(svc *unstructured.Unstructured) (serviceRow, error) {
				selector, _, err := unstructured.NestedStringMap(svc.Object, "spec", "selector")
				if err != nil {
					return serviceRow{}, fmt.Errorf("service %s/%s: %w", svc.GetNamespace(), svc.GetName(), err)
				}
				targeted := candidates.
					Where(resource.InNamespace(svc.GetNamespace())).
					Where(resource.MatchingLabels(selector))
				names, err := query.Select(targeted, (*unstructured.Unstructured).GetName).ToSlice()
				return serviceRow{namespace: svc.GetNamespace(), name: svc.GetName(), pods: names}, err
			}).ToSlice()
			if err != nil {
				return WrapExitError(ExitFailure, "list services", err)
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NAMESPACE\tSERVICE\tPODS")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.namespace, r.name, orNone(strings.Join(r.pods, ",")))
			}
			return tw.Flush()
		},
	}
}
