// Package tree builds ordered directory snapshots for display. Directories
// sort before files, both lexically, so renderings are deterministic.
package tree

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/picoforge/picoforge/pkg/errors"
)

// Node is one entry in a directory snapshot.
type Node struct {
	// Name is the entry's base name
	Name string

	// Path is the entry's path relative to the snapshot root
	Path string

	// IsDir marks directories
	IsDir bool

	// Size is the file size in bytes; zero for directories
	Size int64

	// Children holds a directory's ordered entries
	Children []*Node
}

// Build snapshots the directory at root. The returned node carries the
// root's base name and its ordered children.
func Build(root string) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrFileNotFound, "directory %s does not exist", root)
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot snapshot directory").
			WithDetail("path", root)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is not a directory", root)
	}

	node := &Node{Name: filepath.Base(root), IsDir: true}
	node.Children, err = children(root, "")
	if err != nil {
		return nil, err
	}
	return node, nil
}

// children reads one directory level, ordered directories-first.
func children(dir, rel string) ([]*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read directory").
			WithDetail("path", dir)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	nodes := make([]*Node, 0, len(entries))
	for _, entry := range entries {
		child := &Node{
			Name:  entry.Name(),
			Path:  filepath.Join(rel, entry.Name()),
			IsDir: entry.IsDir(),
		}

		if entry.IsDir() {
			sub, err := children(filepath.Join(dir, entry.Name()), child.Path)
			if err != nil {
				return nil, err
			}
			child.Children = sub
		} else {
			info, err := entry.Info()
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot stat entry").
					WithDetail("path", filepath.Join(dir, entry.Name()))
			}
			child.Size = info.Size()
		}

		nodes = append(nodes, child)
	}
	return nodes, nil
}

// FileCount returns the number of files in the subtree rooted at n.
func (n *Node) FileCount() int {
	if !n.IsDir {
		return 1
	}
	count := 0
	for _, child := range n.Children {
		count += child.FileCount()
	}
	return count
}
