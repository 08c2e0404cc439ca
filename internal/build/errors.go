package build

import "errors"

// Sentinel domain errors used to classify high-level pipeline failures.
// They should always be wrapped with contextual information at the call site.
var (
	ErrDiscovery = errors.New("docweave: discovery error")
	ErrPage      = errors.New("docweave: page error")
	ErrArtifacts = errors.New("docweave: artifact error")
)
