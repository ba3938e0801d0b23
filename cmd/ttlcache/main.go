// Command ttlcache drives a ttlcache.Cache with a configurable workload.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
