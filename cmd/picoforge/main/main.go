package main

import (
	"fmt"
	"os"

	"github.com/picoforge/picoforge/cmd/picoforge"
	"github.com/picoforge/picoforge/pkg/style"
)

func main() {
	rootCmd := picoforge.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
