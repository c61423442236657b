package picoforge

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "A package and firmware toolchain for MicroPython projects"
	MsgCompileShort    = "Cross-compile sources to .mpy bytecode"
	MsgInstallShort    = "Install packages from the package index"
	MsgExportShort     = "Assemble the distributable export tree"
	MsgVersionShort    = "Show version and build information"
	MsgTopicsShort     = "Display available documentation topics"
	MsgTopicsLong      = "Display a list of all available help topics that provide additional documentation beyond command help."
	MsgCompletionShort = "Generate shell completion script"

	// Progress panel titles
	MsgCompilePanel = "Compilation Progress"
	MsgInstallPanel = "Installation Progress"
	MsgExportPanel  = "Exportation Progress"

	// Error messages
	MsgErrCompileFailed = "%d file(s) failed to compile"
	MsgErrInstallFailed = "%d package(s) failed to install"
	MsgErrExportFailed  = "%d file(s) failed to export"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat      = "Output format (auto, term, text)"
	MsgFlagProject     = "Project directory (defaults to the current directory)"
	MsgFlagDirectory   = "Install destination (defaults to the project lib directory)"
	MsgFlagPrecompiled = "Replace .py sources with compiled .mpy artifacts in the export"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/compile-long.txt
	msgCompileLongRaw string
	MsgCompileLong    = strings.TrimSpace(msgCompileLongRaw)

	//go:embed msgs/compile-example.txt
	msgCompileExampleRaw string
	MsgCompileExample    = strings.TrimSpace(msgCompileExampleRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample    = strings.TrimSpace(msgInstallExampleRaw)

	//go:embed msgs/export-long.txt
	msgExportLongRaw string
	MsgExportLong    = strings.TrimSpace(msgExportLongRaw)

	//go:embed msgs/export-example.txt
	msgExportExampleRaw string
	MsgExportExample    = strings.TrimSpace(msgExportExampleRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
