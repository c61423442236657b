// Generates shell completion scripts for packaging, one shell per run.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/picoforge/picoforge/cmd/picoforge"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <bash|zsh|fish|powershell>\n", os.Args[0])
		os.Exit(2)
	}

	if err := generate(os.Args[1], picoforge.NewRootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func generate(shell string, root *cobra.Command) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(os.Stdout, true)
	case "zsh":
		return root.GenZshCompletion(os.Stdout)
	case "fish":
		return root.GenFishCompletion(os.Stdout, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(os.Stdout)
	default:
		return fmt.Errorf("unknown shell %q (supported: bash, zsh, fish, powershell)", shell)
	}
}
