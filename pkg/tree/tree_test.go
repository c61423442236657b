// Test Type: Unit Test
// Description: Tests for the tree package - directory snapshot building and ordering

package tree_test

import (
	"path/filepath"
	"testing"

	"github.com/picoforge/picoforge/pkg/errors"
	"github.com/picoforge/picoforge/pkg/testutil"
	"github.com/picoforge/picoforge/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Run("orders_directories_before_files", func(t *testing.T) {
		root := testutil.CreateDir(t, t.TempDir(), "device")
		testutil.WriteFileTree(t, root, testutil.FileTree{
			"main.py": "print('main')\n",
			"assets": testutil.FileTree{
				"logo.bin": "xx",
			},
			"lib": testutil.FileTree{
				"util.py": "X = 1\n",
			},
		})

		node, err := tree.Build(root)
		require.NoError(t, err)

		assert.Equal(t, "device", node.Name)
		assert.True(t, node.IsDir)

		require.Len(t, node.Children, 3)
		assert.Equal(t, "assets", node.Children[0].Name)
		assert.True(t, node.Children[0].IsDir)
		assert.Equal(t, "lib", node.Children[1].Name)
		assert.Equal(t, "main.py", node.Children[2].Name)
		assert.False(t, node.Children[2].IsDir)
	})

	t.Run("records_sizes_and_relative_paths", func(t *testing.T) {
		root := testutil.CreateDir(t, t.TempDir(), "device")
		testutil.WriteFileTree(t, root, testutil.FileTree{
			"lib": testutil.FileTree{
				"util.py": "X = 1\n",
			},
		})

		node, err := tree.Build(root)
		require.NoError(t, err)

		lib := node.Children[0]
		require.Len(t, lib.Children, 1)
		util := lib.Children[0]
		assert.Equal(t, filepath.Join("lib", "util.py"), util.Path)
		assert.Equal(t, int64(len("X = 1\n")), util.Size)
		assert.Zero(t, lib.Size)
	})

	t.Run("missing_directory_is_file_not_found", func(t *testing.T) {
		_, err := tree.Build(filepath.Join(t.TempDir(), "ghost"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
	})

	t.Run("file_root_is_invalid_input", func(t *testing.T) {
		path := testutil.CreateFile(t, t.TempDir(), "main.py", "print('hi')\n")
		_, err := tree.Build(path)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestFileCount(t *testing.T) {
	root := testutil.CreateDir(t, t.TempDir(), "device")
	testutil.WriteFileTree(t, root, testutil.FileTree{
		"main.py": "1",
		"boot.py": "2",
		"lib": testutil.FileTree{
			"util.py": "3",
			"deep": testutil.FileTree{
				"nested.py": "4",
			},
		},
	})

	node, err := tree.Build(root)
	require.NoError(t, err)
	assert.Equal(t, 4, node.FileCount())
}
