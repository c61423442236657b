// Package testutil provides utilities for testing picoforge components.
//
// Key components:
//   - IndexServer: in-process package index serving the catalog, manifest,
//     and content endpoints with the live index's URL layout
//   - ProjectTree / FileTree: declarative project directory setup
//   - WriteScript: executable stand-ins for external tools like mpy-cross
//
// Usage guidelines:
//   - All test data should be defined inline, not in external files
//   - Each test should be completely isolated with no shared state
package testutil
