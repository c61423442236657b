// Test Type: Unit Test
// Description: Tests for the exporter package - plain and precompiled export runs

package exporter_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/picoforge/picoforge/pkg/compiler"
	"github.com/picoforge/picoforge/pkg/errors"
	"github.com/picoforge/picoforge/pkg/exporter"
	"github.com/picoforge/picoforge/pkg/progress"
	"github.com/picoforge/picoforge/pkg/project"
	"github.com/picoforge/picoforge/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLayout builds a marked sensor-hub project with the given package tree
// and resolves its layout.
func newLayout(t *testing.T, pkgTree testutil.FileTree) *project.Layout {
	t.Helper()

	root := testutil.ProjectTree(t, "sensor-hub", testutil.FileTree{
		"sensor_hub": pkgTree,
	})
	layout, err := project.NewLayout(root, "")
	require.NoError(t, err)
	return layout
}

// countingCompiler returns a CompileFunc that writes a fake artifact beside
// the source, plus a counter of how often it ran. Sources listed in rejects
// fail instead.
func countingCompiler(t *testing.T, rejects ...string) (exporter.CompileFunc, *int) {
	t.Helper()

	calls := 0
	rejected := make(map[string]bool, len(rejects))
	for _, name := range rejects {
		rejected[name] = true
	}

	fn := func(ctx context.Context, source string) (*compiler.Task, error) {
		calls++
		if rejected[filepath.Base(source)] {
			task := &compiler.Task{Source: source, Status: compiler.StatusError}
			return task, errors.Newf(errors.ErrCompile, "failed to compile %s", source)
		}

		artifact := compiler.ArtifactPath(source)
		if err := os.WriteFile(artifact, []byte("MPY:"+filepath.Base(source)), 0644); err != nil {
			t.Fatalf("Failed to write fake artifact %s: %v", artifact, err)
		}
		return &compiler.Task{Source: source, Artifact: artifact, Status: compiler.StatusDone}, nil
	}
	return fn, &calls
}

func TestExportPlain(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors_the_package_tree_byte_for_byte", func(t *testing.T) {
		layout := newLayout(t, testutil.FileTree{
			"main.py": "print('main')\n",
			"boot.py": "print('boot')\n",
			"data": testutil.FileTree{
				"config.json": `{"interval": 60}`,
			},
			"lib": testutil.FileTree{
				"helper.py": "HELP = True\n",
			},
		})

		result, err := exporter.NewPlanner(layout, nil, nil).Export(ctx, false)
		require.NoError(t, err)

		assert.Equal(t, []string{"boot.py", "data/config.json", "lib/helper.py", "main.py"},
			testutil.ListFiles(t, layout.Export))
		testutil.AssertFileContent(t, filepath.Join(layout.Export, "main.py"), "print('main')\n")
		testutil.AssertFileContent(t, filepath.Join(layout.Export, "data", "config.json"),
			`{"interval": 60}`)

		require.Len(t, result.Items, 4)
		for _, item := range result.Items {
			assert.Equal(t, exporter.KindRaw, item.Kind)
			assert.Equal(t, exporter.ItemDone, item.Status)
		}
		assert.Empty(t, result.Errors)
	})

	t.Run("leaves_artifacts_out_of_the_walk", func(t *testing.T) {
		layout := newLayout(t, testutil.FileTree{
			"main.py":  "print('main')\n",
			"main.mpy": "stale bytecode",
		})

		result, err := exporter.NewPlanner(layout, nil, nil).Export(ctx, false)
		require.NoError(t, err)

		assert.Equal(t, []string{"main.py"}, testutil.ListFiles(t, layout.Export))
		require.Len(t, result.Items, 1)
		assert.Equal(t, filepath.Join(layout.Package, "main.py"), result.Items[0].Source)
	})

	t.Run("missing_package_directory_exports_nothing", func(t *testing.T) {
		root := testutil.ProjectTree(t, "sensor-hub", testutil.FileTree{})
		layout, err := project.NewLayout(root, "")
		require.NoError(t, err)

		result, err := exporter.NewPlanner(layout, nil, nil).Export(ctx, false)
		require.NoError(t, err)

		assert.Empty(t, result.Items)
		assert.Nil(t, result.ProjectTree)
		require.NotNil(t, result.ExportTree)
		assert.Zero(t, result.ExportTree.FileCount())
	})

	t.Run("builds_display_snapshots_of_both_trees", func(t *testing.T) {
		layout := newLayout(t, testutil.FileTree{
			"main.py": "print('main')\n",
			"lib": testutil.FileTree{
				"helper.py": "HELP = True\n",
			},
		})

		result, err := exporter.NewPlanner(layout, nil, nil).Export(ctx, false)
		require.NoError(t, err)

		require.NotNil(t, result.ProjectTree)
		assert.Equal(t, "sensor_hub", result.ProjectTree.Name)
		assert.Equal(t, 2, result.ProjectTree.FileCount())
		require.NotNil(t, result.ExportTree)
		assert.Equal(t, "export", result.ExportTree.Name)
		assert.Equal(t, 2, result.ExportTree.FileCount())
	})
}

func TestExportPrecompiled(t *testing.T) {
	ctx := context.Background()

	t.Run("existing_artifacts_are_copied_without_compiling", func(t *testing.T) {
		layout := newLayout(t, testutil.FileTree{
			"main.py":  "print('main')\n",
			"main.mpy": "prebuilt bytecode",
			"data.txt": "payload\n",
		})
		compile, calls := countingCompiler(t)

		result, err := exporter.NewPlanner(layout, compile, nil).Export(ctx, true)
		require.NoError(t, err)

		assert.Zero(t, *calls)
		assert.Equal(t, []string{"data.txt", "main.mpy"}, testutil.ListFiles(t, layout.Export))
		testutil.AssertFileContent(t, filepath.Join(layout.Export, "main.mpy"), "prebuilt bytecode")
		testutil.AssertFileContent(t, filepath.Join(layout.Export, "data.txt"), "payload\n")

		require.Len(t, result.Items, 2)
		assert.Equal(t, exporter.KindRaw, result.Items[0].Kind)
		assert.Equal(t, exporter.KindCompiled, result.Items[1].Kind)
		assert.Equal(t, filepath.Join(layout.Export, "main.mpy"), result.Items[1].Dest)
	})

	t.Run("sources_without_artifacts_are_compiled_on_the_fly", func(t *testing.T) {
		layout := newLayout(t, testutil.FileTree{
			"main.py": "print('main')\n",
			"lib": testutil.FileTree{
				"helper.py": "HELP = True\n",
			},
		})
		compile, calls := countingCompiler(t)
		tracker := progress.NewTracker()

		result, err := exporter.NewPlanner(layout, compile, tracker).Export(ctx, true)
		require.NoError(t, err)

		assert.Equal(t, 2, *calls)
		assert.Equal(t, []string{"lib/helper.mpy", "main.mpy"}, testutil.ListFiles(t, layout.Export))
		testutil.AssertFileContent(t, filepath.Join(layout.Export, "main.mpy"), "MPY:main.py")

		for _, item := range result.Items {
			assert.Equal(t, exporter.KindCompiled, item.Kind)
			assert.Equal(t, exporter.ItemDone, item.Status)
		}

		var compiled int
		for _, task := range tracker.Tasks() {
			if task.Description == "Exported/Compiled" {
				compiled++
			}
		}
		assert.Equal(t, 2, compiled)
	})

	t.Run("stale_source_copies_are_replaced_by_artifacts", func(t *testing.T) {
		layout := newLayout(t, testutil.FileTree{
			"main.py":  "print('main')\n",
			"main.mpy": "prebuilt bytecode",
		})
		// A previous plain export left the raw source in the tree
		testutil.CreateFile(t, layout.Export, "main.py", "print('main')\n")
		compile, _ := countingCompiler(t)

		_, err := exporter.NewPlanner(layout, compile, nil).Export(ctx, true)
		require.NoError(t, err)

		testutil.AssertNoFile(t, filepath.Join(layout.Export, "main.py"))
		testutil.AssertFileContent(t, filepath.Join(layout.Export, "main.mpy"), "prebuilt bytecode")
	})

	t.Run("compile_failure_skips_the_item_and_keeps_going", func(t *testing.T) {
		layout := newLayout(t, testutil.FileTree{
			"aaa.py": "def broken(:\n",
			"zzz.py": "Z = 1\n",
		})
		compile, _ := countingCompiler(t, "aaa.py")
		tracker := progress.NewTracker()

		result, err := exporter.NewPlanner(layout, compile, tracker).Export(ctx, true)
		require.NoError(t, err)

		require.Len(t, result.Errors, 1)
		assert.True(t, errors.IsErrorCode(result.Errors[0], errors.ErrCompile))

		require.Len(t, result.Items, 2)
		assert.Equal(t, exporter.ItemError, result.Items[0].Status)
		assert.Equal(t, exporter.ItemDone, result.Items[1].Status)

		// Nothing of the failed source lands in the export tree
		assert.Equal(t, []string{"zzz.mpy"}, testutil.ListFiles(t, layout.Export))

		var errorTasks int
		for _, task := range tracker.Tasks() {
			if task.Description == "Error" {
				assert.True(t, task.Visible)
				errorTasks++
			}
		}
		assert.Equal(t, 1, errorTasks)
	})

	t.Run("non_source_files_still_copy_raw", func(t *testing.T) {
		layout := newLayout(t, testutil.FileTree{
			"cert.der": "DER-BYTES",
		})
		compile, calls := countingCompiler(t)

		result, err := exporter.NewPlanner(layout, compile, nil).Export(ctx, true)
		require.NoError(t, err)

		assert.Zero(t, *calls)
		require.Len(t, result.Items, 1)
		assert.Equal(t, exporter.KindRaw, result.Items[0].Kind)
		testutil.AssertFileContent(t, filepath.Join(layout.Export, "cert.der"), "DER-BYTES")
	})

	t.Run("precompiled_without_a_compiler_is_rejected", func(t *testing.T) {
		layout := newLayout(t, testutil.FileTree{"main.py": "print('main')\n"})

		_, err := exporter.NewPlanner(layout, nil, nil).Export(ctx, true)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
	})
}

func TestExportProgress(t *testing.T) {
	ctx := context.Background()

	layout := newLayout(t, testutil.FileTree{
		"main.py": "print('main')\n",
		"boot.py": "print('boot')\n",
	})
	tracker := progress.NewTracker()

	_, err := exporter.NewPlanner(layout, nil, tracker).Export(ctx, false)
	require.NoError(t, err)

	tasks := tracker.Tasks()
	require.Len(t, tasks, 3)

	overall := tasks[0]
	assert.Equal(t, "Exported", overall.Description)
	assert.Equal(t, "sensor_hub", overall.Item)
	assert.Equal(t, 2, overall.Total)
	assert.Equal(t, 2, overall.Completed)
	assert.True(t, overall.Stopped)

	for _, task := range tasks[1:] {
		assert.Equal(t, "Exported", task.Description)
		assert.Equal(t, 1, task.Completed)
		assert.True(t, task.Stopped)
	}
	assert.Equal(t, "boot.py", tasks[1].Item)
	assert.Equal(t, "main.py", tasks[2].Item)
}
