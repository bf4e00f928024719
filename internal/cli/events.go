package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hasbyte1/go-kube-query/query"
	"github.com/hasbyte1/go-kube-query/resource"
)

type eventsOptions struct {
	types []string
	pods  bool
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &eventsOptions{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show warning and error events grouped by the kind they involve",
		Long: `Show events of the selected types grouped by the kind of object they
involve. With --pods, show only events about pods that still exist,
joined to the node each pod runs on.`,
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

			events := resource.List(ctx, c, resource.Events, rootOpts.listOptions(resource.Events)...).
				Where(func(e *unstructured.Unstructured) bool {
					return slices.Contains(opts.types, resource.String(e, "type"))
				})

			if opts.pods {
				pods := resource.List(ctx, c, resource.Pods, rootOpts.listOptions(resource.Pods)...)
				err = printPodEvents(cmd.OutOrStdout(), events, pods)
			} else {
				err = printEventGroups(cmd.OutOrStdout(), events)
			}
			if err != nil {
				return WrapExitError(ExitFailure, "list events", err)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&opts.types, "type", []string{"Warning", "Error"}, "event types to show")
	cmd.Flags().BoolVar(&opts.pods, "pods", false, "join pod events to the pods they involve")
	return cmd
}

func printEventGroups(w io.Writer, events query.Enumerable[*unstructured.Unstructured]) error {
	groups := query.GroupBy(events, func(e *unstructured.Unstructured) string {
		return resource.String(e, "involvedObject.kind")
	})
	return groups.ForEach(func(g query.Grouping[string, *unstructured.Unstructured], _ int) bool {
		fmt.Fprintf(w, "kind: %s\n", g.Key)
		for _, e := range g.Items {
			fmt.Fprintf(w, "  %s\t(x%v)\t%s\n    Message: %s\n",
				resource.String(e, "type"),
				resource.Get(e, "count", int64(1)),
				resource.String(e, "involvedObject.name"),
				resource.String(e, "message"))
		}
		return true
	})
}

type podEvent struct {
	event *unstructured.Unstructured
	pod   *unstructured.Unstructured
}

func printPodEvents(w io.Writer, events, pods query.Enumerable[*unstructured.Unstructured]) error {
	aboutPods := events.Where(resource.FieldEquals("involvedObject.kind", "Pod"))
	joined, err := query.Join(aboutPods, pods,
		func(e *unstructured.Unstructured) string {
			return resource.String(e, "involvedObject.namespace") + "/" + resource.String(e, "involvedObject.name")
		},
		func(p *unstructured.Unstructured) string {
			return p.GetNamespace() + "/" + p.GetName()
		},
		func(e, p *unstructured.Unstructured) podEvent {
			return podEvent{event: e, pod: p}
		},
	).ToSlice()
	if err != nil {
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "NAMESPACE\tPOD\tNODE\tTYPE\tREASON")
	for _, j := range joined {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			j.pod.GetNamespace(), j.pod.GetName(),
			orNone(resource.String(j.pod, "spec.nodeName")),
			resource.String(j.event, "type"),
			resource.String(j.event, "reason"))
	}
	return tw.Flush()
}
