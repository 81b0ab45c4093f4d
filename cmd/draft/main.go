// Command draft edits JSON documents through copy-on-write transactions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/draft/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
