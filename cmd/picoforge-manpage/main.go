// Generates the picoforge man page on stdout for packaging.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/picoforge/picoforge/cmd/picoforge"
	"github.com/picoforge/picoforge/internal/version"
)

func main() {
	rootCmd := picoforge.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "PICOFORGE",
		Section: "1",
		Source:  "picoforge " + version.Version,
		Manual:  "picoforge manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
