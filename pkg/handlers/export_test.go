package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/lathe/pkg/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSessionWritesManifest(t *testing.T) {
	root := t.TempDir()
	reg, err := Catalog(export.New(root))
	require.NoError(t, err)

	ec := newTestContext()
	_, err = call(t, ec, "create_sketch", nil)
	require.NoError(t, err)

	h, ok := reg.Resolve("export_session")
	require.True(t, ok)
	out, err := h(context.Background(), ec, map[string]any{"name": "smoke"})
	require.NoError(t, err)

	m := out.(map[string]any)
	sessionPath := m["session_path"].(string)
	assert.Contains(t, m["message"], "Exported session to")
	assert.DirExists(t, sessionPath)

	_, err = os.Stat(filepath.Join(sessionPath, "manifest.json"))
	require.NoError(t, err)
}

func TestExportSessionFailure(t *testing.T) {
	// A root that is a file, not a directory, makes session creation fail.
	root := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0o644))

	reg, err := Catalog(export.New(root))
	require.NoError(t, err)
	h, ok := reg.Resolve("export_session")
	require.True(t, ok)

	_, err = h(context.Background(), newTestContext(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to export session")
}
