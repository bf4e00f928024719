package cli

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hasbyte1/go-kube-query/query"
	"github.com/hasbyte1/go-kube-query/resource"
)

// NewImagesCommand creates the images command.
func NewImagesCommand(rootOpts *RootOptions) *cobra.Command {
	var grep string

	cmd := &cobra.Command{
		Use:   "images",
		Short: "List the distinct container images pods run",
		Long: `List the distinct container images, init containers included, run by
pods in the selected namespaces, in the order they are first seen.`,
		Example:       `  kq images -A --grep '^mysql:5\.'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var re *regexp.Regexp
			if grep != "" {
				var err error
				if re, err = regexp.Compile(grep); err != nil {
					return WrapExitError(ExitCommandError, "invalid --grep", err)
				}
			}

			ctx := cmd.Context()
			c, release, err := rootOpts.connect(ctx)
			if err != nil {
				return err
			}
			defer release()

			pods := resource.List(ctx, c, resource.Pods, rootOpts.listOptions(resource.Pods)...)
			images := query.Distinct(query.SelectMany(pods, containerImages))
			if re != nil {
				images = images.Where(re.MatchString)
			}

			out := cmd.OutOrStdout()
			if err := images.ForEach(func(image string, _ int) bool {
				fmt.Fprintln(out, image)
				return true
			}); err != nil {
				return WrapExitError(ExitFailure, "list images", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&grep, "grep", "", "only print images matching this regular expression")
	return cmd
}

// containerImages returns the images of a pod's init and regular containers.
func containerImages(pod *unstructured.Unstructured) query.Enumerable[string] {
	containers := append(resource.Maps(pod, "spec.initContainers"), resource.Maps(pod, "spec.containers")...)
	return query.Select(query.From(containers).Where(func(c map[string]any) bool {
		image, _ := c["image"].(string)
		return image != ""
	}), func(c map[string]any) string {
		return c["image"].(string)
	})
}
