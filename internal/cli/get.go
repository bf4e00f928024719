package cli

import (
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hasbyte1/go-kube-query/query"
	"github.com/hasbyte1/go-kube-query/resource"
)

type getOptions struct {
	selector string
	fields   []string
	name     string
	grep     string
	limit    int
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get KIND",
		Short: "List resources of a kind",
		Long: `List resources of a kind, optionally filtered.

KIND is a short name (po, svc, deploy), a resource name (pods, Deployment)
or a fully-qualified Kind.version.group. Filters combine with AND.`,
		Example: `  kq get pods -l app=web
  kq get deploy -A --field spec.replicas=3
  kq get pods --grep 'mysql:5\.'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.selector, "selector", "l", "", "label selector (e.g. app=web,tier!=cache)")
	cmd.Flags().StringArrayVar(&opts.fields, "field", nil, "keep objects whose value at PATH equals VALUE (PATH=VALUE, repeatable)")
	cmd.Flags().StringVar(&opts.name, "name", "", "keep objects whose name matches this regular expression")
	cmd.Flags().StringVar(&opts.grep, "grep", "", "keep objects with any field value matching this regular expression")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "print at most N objects (0 for all)")

	return cmd
}

// predicates turns the filter flags into object predicates.
func (o *getOptions) predicates() ([]resource.Predicate, error) {
	var out []resource.Predicate
	if o.selector != "" {
		sel, err := resource.Selector(o.selector)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --selector", err)
		}
		out = append(out, sel)
	}
	for _, f := range o.fields {
		path, value, ok := strings.Cut(f, "=")
		if !ok || path == "" {
			return nil, NewExitError(ExitCommandError, "invalid --field "+f+": want PATH=VALUE")
		}
		out = append(out, resource.FieldEquals(path, value))
	}
	if o.name != "" {
		re, err := regexp.Compile(o.name)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --name", err)
		}
		out = append(out, resource.NameMatches(re))
	}
	if o.grep != "" {
		re, err := regexp.Compile(o.grep)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --grep", err)
		}
		out = append(out, resource.AnyFieldMatches(re))
	}
	return out, nil
}

func runGet(cmd *cobra.Command, rootOpts *RootOptions, opts *getOptions, kind string) error {
	gvk, err := resource.ParseKind(kind)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid kind", err)
	}
	predicates, err := opts.predicates()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c, release, err := rootOpts.connect(ctx)
	if err != nil {
		return err
	}
	defer release()

	objs := resource.List(ctx, c, gvk, rootOpts.listOptions(gvk)...)
	for _, p := range predicates {
		objs = objs.Where(p)
	}
	if opts.limit > 0 {
		objs = query.Take(objs, opts.limit)
	}

	items, err := objs.ToSlice()
	if err != nil {
		return WrapExitError(ExitFailure, "get "+kind, err)
	}
	return printObjects(cmd.OutOrStdout(), cmd.ErrOrStderr(), rootOpts.Output, items)
}
