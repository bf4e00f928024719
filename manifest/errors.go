package manifest

import "errors"

// Sentinel errors returned by transforms.
var (
	// ErrUnsupportedKind is returned when a transform does not apply to the
	// object's kind, e.g. WithReplicas on a ConfigMap.
	ErrUnsupportedKind = errors.New("manifest: unsupported kind")

	// ErrContainerNotFound is returned when a transform names a container the
	// object's pod template does not have.
	ErrContainerNotFound = errors.New("manifest: container not found")
)
