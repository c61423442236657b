package picoforge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/picoforge/picoforge/internal/version"
	"github.com/picoforge/picoforge/pkg/catalog"
	"github.com/picoforge/picoforge/pkg/cobrax/topics"
	compilecmd "github.com/picoforge/picoforge/pkg/commands/compile"
	exportcmd "github.com/picoforge/picoforge/pkg/commands/export"
	installcmd "github.com/picoforge/picoforge/pkg/commands/install"
	"github.com/picoforge/picoforge/pkg/config"
	"github.com/picoforge/picoforge/pkg/display"
	"github.com/picoforge/picoforge/pkg/installer"
	"github.com/picoforge/picoforge/pkg/logging"
	"github.com/picoforge/picoforge/pkg/progress"
	"github.com/picoforge/picoforge/pkg/project"
	"github.com/picoforge/picoforge/pkg/style"
	"github.com/picoforge/picoforge/pkg/ui"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "picoforge",
		Short: MsgRootShort,
		Long:  MsgRootLong,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().String("format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().String("project", "", MsgFlagProject)

	// Disable automatic help command (we'll use our custom one from topics)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newCompileCmd())
	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Initialize topic-based help system
	// Try to find help topics relative to the executable location
	exe, err := os.Executable()
	if err == nil {
		possiblePaths := []string{
			filepath.Join(filepath.Dir(exe), "topics"),                                 // Same directory as binary (production)
			filepath.Join(filepath.Dir(exe), "..", "..", "cmd", "picoforge", "topics"), // Development
			"cmd/picoforge/topics", // Current directory fallback
		}

		for _, helpPath := range possiblePaths {
			if _, err := os.Stat(helpPath); err == nil {
				opts := topics.Options{
					Extensions: []string{".txt", ".md"},
					// Always use Glamour renderer for markdown files
					Renderer: topics.NewGlamourRenderer(),
				}

				if err := topics.InitializeWithOptions(rootCmd, helpPath, opts); err == nil {
					break
				}
			}
		}
	}

	return rootCmd
}

// initProject discovers the project layout and loads its configuration.
// The --project flag pins the starting directory; otherwise discovery
// walks up from the current one.
func initProject(cmd *cobra.Command) (*project.Layout, error) {
	start, _ := cmd.Root().PersistentFlags().GetString("project")

	root, err := project.DiscoverRoot(start)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.LoadOptions{ProjectRoot: root})
	if err != nil {
		return nil, err
	}
	config.Initialize(cfg)

	// A configured export directory beats the marker file; the built-in
	// default must not, or the marker could never take effect
	exportDir := ""
	if cfg.Export.Directory != project.DefaultExportDir {
		exportDir = cfg.Export.Directory
	}

	return project.NewLayout(root, exportDir)
}

// resolveFormat turns the --format flag into a concrete output format
func resolveFormat(cmd *cobra.Command) (ui.Format, error) {
	name, _ := cmd.Root().PersistentFlags().GetString("format")
	format, err := ui.ParseFormat(name)
	if err != nil {
		return ui.FormatText, err
	}
	return ui.Resolve(format, os.Stdout), nil
}

// newProgress builds a tracker wired to a running display listener
func newProgress(cmd *cobra.Command, title string) (*progress.Tracker, display.Listener, ui.Format, error) {
	format, err := resolveFormat(cmd)
	if err != nil {
		return nil, nil, format, err
	}

	tracker := progress.NewTracker()
	listener := display.ListenerFor(format, title, cmd.OutOrStdout())
	tracker.Subscribe(listener)
	if err := listener.Start(); err != nil {
		return nil, nil, format, err
	}
	return tracker, listener, format, nil
}

// stopProgress stops the listener, leaving the final frame on screen
func stopProgress(listener display.Listener) {
	if err := listener.Stop(); err != nil {
		log.Warn().Err(err).Msg("Failed to stop progress display")
	}
}

// sourceCompletion provides shell completion for compile targets
func sourceCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	layout, err := initProject(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}

	sources, err := layout.Sources()
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}

	var names []string
	for _, src := range sources {
		if rel, err := filepath.Rel(layout.Root, src); err == nil {
			names = append(names, rel)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "compile [files...]",
		Short:             MsgCompileShort,
		Long:              MsgCompileLong,
		Example:           MsgCompileExample,
		GroupID:           "core",
		ValidArgsFunction: sourceCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := initProject(cmd)
			if err != nil {
				// Explicit targets compile fine outside a project
				if len(args) == 0 {
					return err
				}
				log.Debug().Err(err).Msg("No project found, compiling explicit targets")
				layout = nil
			}

			tracker, listener, _, err := newProgress(cmd, MsgCompilePanel)
			if err != nil {
				return err
			}

			result, err := compilecmd.CompileTargets(cmd.Context(), compilecmd.CompileOptions{
				Targets: args,
				Layout:  layout,
				Tracker: tracker,
			})
			stopProgress(listener)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			if failed := len(result.Errors); failed > 0 {
				return fmt.Errorf(MsgErrCompileFailed, failed)
			}
			return nil
		},
	}
}

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install <package>...",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := initProject(cmd)
			if err != nil {
				return err
			}

			directory, _ := cmd.Flags().GetString("directory")

			// The catalog is fetched in full before any package is touched
			index := catalog.New()
			if err := index.Fetch(cmd.Context()); err != nil {
				return err
			}

			tracker, listener, _, err := newProgress(cmd, MsgInstallPanel)
			if err != nil {
				return err
			}

			result, err := installcmd.InstallPackages(cmd.Context(), installcmd.InstallOptions{
				Packages:  args,
				Directory: directory,
				Layout:    layout,
				Installer: installer.New(index),
				Tracker:   tracker,
			})
			stopProgress(listener)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			if failed := len(result.Errors); failed > 0 {
				return fmt.Errorf(MsgErrInstallFailed, failed)
			}
			return nil
		},
	}

	cmd.Flags().StringP("directory", "d", "", MsgFlagDirectory)

	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export",
		Short:   MsgExportShort,
		Long:    MsgExportLong,
		Example: MsgExportExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := initProject(cmd)
			if err != nil {
				return err
			}

			precompiled, _ := cmd.Flags().GetBool("precompiled")

			tracker, listener, format, err := newProgress(cmd, MsgExportPanel)
			if err != nil {
				return err
			}

			result, err := exportcmd.ExportProject(cmd.Context(), exportcmd.ExportOptions{
				Precompiled: precompiled,
				Layout:      layout,
				Tracker:     tracker,
			})
			stopProgress(listener)
			if err != nil {
				return err
			}

			printTrees(cmd, layout, result, precompiled, format)

			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			if failed := len(result.Errors); failed > 0 {
				return fmt.Errorf(MsgErrExportFailed, failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolP("precompiled", "p", false, MsgFlagPrecompiled)

	return cmd
}

// printTrees renders the package directory and the export tree side by
// side. Plain output sticks to the summary line.
func printTrees(cmd *cobra.Command, layout *project.Layout, result *exportcmd.ExportResult, precompiled bool, format ui.Format) {
	if format != ui.FormatTerminal {
		return
	}

	left, err := display.RenderTree(result.ProjectTree, display.TreeOptions{MarkReplaced: precompiled})
	if err != nil {
		return
	}
	right, err := display.RenderTree(result.ExportTree, display.TreeOptions{})
	if err != nil {
		return
	}
	if left == "" && right == "" {
		return
	}

	panels := pterm.Panels{{
		{Data: headedTree(layout.Name, left)},
		{Data: headedTree(filepath.Base(layout.Export), right)},
	}}
	rendered, err := pterm.DefaultPanel.WithPanels(panels).WithPadding(4).Srender()
	if err != nil {
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
}

// headedTree puts a styled directory name above a rendered tree
func headedTree(name, body string) string {
	return style.SubtitleStyle.Render(name) + "\n" + body
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "picoforge %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Find the help command and execute it with "topics" argument
			if helpCmd, _, err := cmd.Root().Find([]string{"help"}); err == nil {
				if helpCmd.RunE != nil {
					return helpCmd.RunE(helpCmd, []string{"topics"})
				} else if helpCmd.Run != nil {
					helpCmd.Run(helpCmd, []string{"topics"})
					return nil
				}
			}
			return fmt.Errorf("help command not found")
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
