package display

import (
	"fmt"
	"strings"

	"github.com/picoforge/picoforge/pkg/project"
	"github.com/picoforge/picoforge/pkg/style"
	"github.com/picoforge/picoforge/pkg/tree"
	"github.com/pterm/pterm"
)

// TreeOptions control how a directory snapshot is rendered
type TreeOptions struct {
	// MarkReplaced strikes through source files whose exported copy is
	// a compiled artifact rather than the source itself
	MarkReplaced bool
}

// RenderTree renders a snapshot as an indented tree. Directories come
// before files within each level, matching the snapshot order.
func RenderTree(root *tree.Node, opts TreeOptions) (string, error) {
	if root == nil {
		return "", nil
	}
	return pterm.DefaultTree.WithRoot(toPtermNode(root, opts)).Srender()
}

func toPtermNode(n *tree.Node, opts TreeOptions) pterm.TreeNode {
	node := pterm.TreeNode{
		Text: entryText(n, opts),
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, toPtermNode(child, opts))
	}
	return node
}

// entryText renders one tree entry: styled name for directories, icon
// plus name plus size for files.
func entryText(n *tree.Node, opts TreeOptions) string {
	if n.IsDir {
		return style.DirStyle.Render(n.Name)
	}

	icon := "📄"
	if strings.HasSuffix(n.Name, project.SourceExt) {
		icon = "🐍"
	}

	name := n.Name
	switch {
	case opts.MarkReplaced && strings.HasSuffix(n.Name, project.SourceExt):
		name = style.ReplacedStyle.Render(name)
	case n.Name == "__init__"+project.SourceExt:
		name = style.DimStyle.Render(name)
	}

	size := style.SizeStyle.Render("(" + humanSize(n.Size) + ")")
	return icon + " " + name + " " + size
}

// humanSize formats a byte count with decimal units
func humanSize(size int64) string {
	switch {
	case size < 1000:
		return fmt.Sprintf("%d B", size)
	case size < 1000*1000:
		return fmt.Sprintf("%.1f kB", float64(size)/1000)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1000*1000))
	}
}
