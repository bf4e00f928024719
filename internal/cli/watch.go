package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hasbyte1/go-kube-query/resource"
)

type watchOptions struct {
	limit   int
	timeout time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch KIND",
		Short: "Stream changes to resources of a kind",
		Long: `Stream changes to resources of a kind, one line per event, starting
with the objects that already exist. Runs until interrupted, until --limit
events have been printed or until --timeout elapses.`,
		Example:       `  kq watch pods --limit 10 --timeout 1m`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			gvk, err := resource.ParseKind(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid kind", err)
			}

			ctx := cmd.Context()
			if opts.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.timeout)
				defer cancel()
			}
			c, release, err := rootOpts.connect(ctx)
			if err != nil {
				return err
			}
			defer release()

			out := cmd.OutOrStdout()
			kind := strings.ToLower(gvk.Kind)
			err = resource.Watch(ctx, c, gvk, rootOpts.listOptions(gvk)...).
				ForEach(func(ev resource.Event, i int) bool {
					fmt.Fprintf(out, "%-8s %s/%s\n", ev.Type, kind, ev.Object.GetName())
					return opts.limit <= 0 || i+1 < opts.limit
				})
			if err != nil {
				return WrapExitError(ExitFailure, "watch "+args[0], err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 0, "stop after N events (0 for no limit)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "stop after this long (0 for no timeout)")
	return cmd
}
