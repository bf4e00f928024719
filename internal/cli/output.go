package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hasbyte1/go-kube-query/manifest"
	"github.com/hasbyte1/go-kube-query/resource"
)

// Exit codes returned by kq.
const (
	// ExitFailure means the query ran and failed: the API refused a list or
	// watch, or a manifest transform failed.
	ExitFailure = 1
	// ExitCommandError means the command was never run: bad flags, an
	// unknown kind, an invalid selector or unreadable manifests.
	ExitCommandError = 2
)

// ExitError carries the exit code kq should end with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError explaining err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code carried by the first ExitError in err's
// chain, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ─────────────────────────────────────────────────────────────────────────────
// Printing
// ─────────────────────────────────────────────────────────────────────────────

// newTable returns a writer aligning tab-separated columns.
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
}

// printObjects writes objs in the given output format. Empty results print a
// notice to errW in the tabular formats.
func printObjects(w, errW io.Writer, format string, objs []*unstructured.Unstructured) error {
	switch format {
	case "yaml":
		return manifest.WriteYAML(w, objs...)
	case "json":
		return manifest.WriteJSON(w, objs...)
	}
	if len(objs) == 0 {
		fmt.Fprintln(errW, "No resources found.")
		return nil
	}
	if format == "name" {
		for _, obj := range objs {
			fmt.Fprintln(w, qualifiedName(obj))
		}
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "NAMESPACE\tNAME\tKIND\tSTATUS")
	for _, obj := range objs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			orNone(obj.GetNamespace()), obj.GetName(), obj.GetKind(), status(obj))
	}
	return tw.Flush()
}

// qualifiedName returns kind/name, e.g. pod/web-1.
func qualifiedName(obj *unstructured.Unstructured) string {
	return strings.ToLower(obj.GetKind()) + "/" + obj.GetName()
}

func status(obj *unstructured.Unstructured) string {
	if phase := resource.String(obj, "status.phase"); phase != "" {
		return phase
	}
	if resource.Has(obj, "spec.replicas") {
		return fmt.Sprintf("%d/%s ready",
			resource.Get(obj, "status.readyReplicas", int64(0)), resource.String(obj, "spec.replicas"))
	}
	return "-"
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}
