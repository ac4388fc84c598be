// Command monkey-lsp runs the parser-diagnostics language server on stdio.
package main

import (
	"fmt"
	"os"

	"github.com/monkeylang/monkey/pkg/lsp"
)

func main() {
	if err := lsp.New().Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
