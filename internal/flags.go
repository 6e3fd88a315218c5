package internal

import "github.com/gke-samples/gke-metrics-exporter/pkg/daemon"

// Flags define CLI flags.
type Flags struct {
	// Version decides whether to just print the version and exit.
	Version bool `long:"version" description:"print version and exit"`
	daemon.ConfigFlagGlue
}
