package cli

import (
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Files         []string // manifests served by an in-memory cluster
	Namespace     string
	AllNamespaces bool
	Output        string // "name" | "wide" | "yaml" | "json"
	Verbose       bool
}

// ValidOutputs defines the allowed output formats.
var ValidOutputs = []string{"name", "wide", "yaml", "json"}

// NewRootCommand creates the root command for the kq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kq",
		Short: "kq - query Kubernetes resources as lazy sequences",
		Long: `Query Kubernetes resources with composable filters, projections,
joins and groupings.

Reads from the cluster in the current kubeconfig, or from manifest files
with -f.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidOutputs, opts.Output) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid output %q: must be one of %v", opts.Output, ValidOutputs))
			}
			logger := zap.New(
				zap.UseDevMode(opts.Verbose),
				zap.WriteTo(cmd.ErrOrStderr()),
				zap.ConsoleEncoder(),
			)
			ctrllog.SetLogger(logger)
			cmd.SetContext(logr.NewContext(cmd.Context(), logger))
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	// Global flags
	cmd.PersistentFlags().StringArrayVarP(&opts.Files, "filename", "f", nil, "manifest file or directory to query instead of a live cluster (repeatable, - for stdin)")
	cmd.PersistentFlags().StringVarP(&opts.Namespace, "namespace", "n", "default", "namespace to query")
	cmd.PersistentFlags().BoolVarP(&opts.AllNamespaces, "all-namespaces", "A", false, "query every namespace")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "name", "output format (name|wide|yaml|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging to stderr")

	// Add subcommands
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewImagesCommand(opts))
	cmd.AddCommand(NewServicesCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))

	return cmd
}
