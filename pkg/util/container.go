// Package util holds small host environment checks
package util

import "os"

// containerMarkers are files container runtimes drop at the root of the
// filesystem. Docker creates the first, podman the second.
var containerMarkers = []string{"/.dockerenv", "/run/.containerenv"}

// InContainer reports whether the process runs inside a container
func InContainer() bool {
	return anyExists(containerMarkers)
}

func anyExists(paths []string) bool {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}

	return false
}
