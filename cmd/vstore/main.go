// Command vstore serves the demo stores over HTTP and converts hydration
// payloads.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌─┐┌┬┐┌─┐┬─┐┌─┐
  ╚╗╔╝└─┐ │ │ │├┬┘├┤
   ╚╝ └─┘ ┴ └─┘┴└─└─┘
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vstore",
		Short: "Scoped, hydratable stores for server-driven UIs",
		Long: `vstore runs stores whose identifiers follow the component tree.

Stores created inside another store's setup are scoped under it,
server state is hydrated into freshly initialized stores, and a
devtools client can watch every mutation over WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		serveCmd(),
		hydrateCmd(),
		versionCmd(),
	)
	return cmd
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
