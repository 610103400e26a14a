// Command dynoteam-mcp serves dynoteam teams over the Model Context Protocol.
//
// It accepts the same flags as `dynoteam mcp`:
//
//	dynoteam-mcp                                      # stdio (default)
//	dynoteam-mcp --transport http --port 8080 --team ./teams/etl.yaml
//	dynoteam-mcp --transport http --oauth --issuer https://company.okta.com --audience api://dynoteam
package main

import (
	"os"

	"github.com/tuannvm/dynoteam/internal/cmd"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cmd.SetVersion(Version)
	if err := cmd.ExecuteMCP(); err != nil {
		os.Exit(1)
	}
}
