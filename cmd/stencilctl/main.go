// Command stencilctl is a small CLI around the stencil template
// engine: lex, parse and render a template from the command line.
//
// The root/lex/parse/render command split mirrors CWBudde-go-dws's
// cmd/dwscript/cmd layout (lex.go, parse.go, run.go, root.go); the
// viper/zap/cobra wiring pattern is grounded on dphaener-conduit's
// cmd/conduit, which layers the same three libraries under cobra.
package main

import (
	"fmt"
	"os"

	"github.com/stencil-lang/stencil/cmd/stencilctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
