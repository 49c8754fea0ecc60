// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tspevents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource_WithHeader(t *testing.T) {
	path := writeCSV(t, "device_id,value\ndev-1,33\ndev-1,34\n")
	src, err := OpenCSVSource(path, true)
	require.NoError(t, err)
	defer src.Close()

	row, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, "dev-1", row.Get("device_id"))
	assert.Equal(t, "33", row.Get("value"))

	row, ok = src.Next()
	require.True(t, ok)
	assert.Equal(t, "34", row.Get("value"))

	_, ok = src.Next()
	assert.False(t, ok)
}

func TestCSVSource_WithoutHeader(t *testing.T) {
	path := writeCSV(t, "dev-1,33\n")
	src, err := OpenCSVSource(path, false)
	require.NoError(t, err)
	defer src.Close()

	row, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, []string{"dev-1", "33"}, row.Fields)
	assert.Equal(t, "", row.Get("value"))
}

func TestOpenCSVSource_MissingFile(t *testing.T) {
	_, err := OpenCSVSource("/nonexistent/path.csv", true)
	assert.Error(t, err)
}
