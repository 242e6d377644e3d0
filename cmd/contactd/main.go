// Command contactd serves the contact form API and offers operator commands
// to inspect and clear a visitor's stored submissions.
//
// @title        Contact Backend API
// @version      1.0
// @description  Contact form submissions, service catalog and review confirmations for the marketing site.
// @BasePath     /api/v1
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(execute(newRootCmd(), os.Stderr))
}

// execute runs root and returns the process exit code. Cobra's own error
// output is silenced, so the error is written to stderr here; the logger may
// not be configured yet when config loading is what failed.
func execute(root *cobra.Command, stderr io.Writer) int {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "contactd:", err)
		return 1
	}
	return 0
}
