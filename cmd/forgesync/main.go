// Command forgesync keeps repositories in sync by tracking equivalent
// revisions and merging codebases between them.
package main

import (
	"os"

	"github.com/input-output-hk/forge-sync/cli"
)

func main() {
	os.Exit(cli.Execute())
}
