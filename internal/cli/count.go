package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hasbyte1/go-kube-query/query"
	"github.com/hasbyte1/go-kube-query/resource"
)

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "count KIND",
		Short: "Count resources grouped by namespace, label or field",
		Long: `Count resources of a kind grouped by a key:

  namespace       the object's namespace
  label:<key>     the value of a label
  field:<path>    the value at a dot path, e.g. field:status.phase

Objects without the label or field are counted under <none>.`,
		Example:       `  kq count pods -A --by label:app`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			gvk, err := resource.ParseKind(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid kind", err)
			}
			key, err := groupKey(by)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, release, err := rootOpts.connect(ctx)
			if err != nil {
				return err
			}
			defer release()

			groups := query.GroupBy(resource.List(ctx, c, gvk, rootOpts.listOptions(gvk)...), key)
			counts, err := query.Select(groups, func(g query.Grouping[string, *unstructured.Unstructured]) query.Pair[string, int] {
				return query.Pair[string, int]{First: g.Key, Second: len(g.Items)}
			}).ToSlice()
			if err != nil {
				return WrapExitError(ExitFailure, "count "+args[0], err)
			}
			sort.Slice(counts, func(i, j int) bool { return counts[i].First < counts[j].First })

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "GROUP\tCOUNT")
			for _, p := range counts {
				fmt.Fprintf(tw, "%s\t%d\n", p.First, p.Second)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&by, "by", "namespace", "grouping key: namespace, label:<key> or field:<path>")
	return cmd
}

func groupKey(by string) (func(*unstructured.Unstructured) string, error) {
	switch {
	case by == "namespace":
		return func(obj *unstructured.Unstructured) string { return orNone(obj.GetNamespace()) }, nil
	case strings.HasPrefix(by, "label:") && len(by) > len("label:"):
		label := strings.TrimPrefix(by, "label:")
		return func(obj *unstructured.Unstructured) string { return orNone(obj.GetLabels()[label]) }, nil
	case strings.HasPrefix(by, "field:") && len(by) > len("field:"):
		path := strings.TrimPrefix(by, "field:")
		return func(obj *unstructured.Unstructured) string { return orNone(resource.String(obj, path)) }, nil
	}
	return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --by %q: want namespace, label:<key> or field:<path>", by))
}
