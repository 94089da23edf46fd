// Command megasampler is the CLI front end of spec.md §6: it parses an
// SMT-LIB2 file over QF_LIA/QF_ALIA, runs the generalize-and-sample Driver
// to completion, and writes one sample per line to `<input>.samples`.
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("megasampler: %s", err)
		os.Exit(1)
	}
}
