// Command threadkeeper ranks a project's pending narrative obligations and
// reports on the health of the pool.
//
// Usage:
//
//	threadkeeper <command> [flags]
//
// Commands: init, select, metrics, stale, overused, dashboard.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		die("%v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
