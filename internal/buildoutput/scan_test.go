// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package buildoutput_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laminarhq/laminar/internal/buildoutput"
	"github.com/laminarhq/laminar/internal/schema"
)

var testFramework = schema.Framework{
	Name:      "solidstart",
	AssetsDir: "client",
	ServerDir: "server",
	PlaceholderRoutes: []string{
		"_build/*", "_server/*", "assets/*", "favicon.ico",
	},
}

func TestScanClassifiesTopLevelEntries(t *testing.T) {
	root := t.TempDir()
	client := filepath.Join(root, "client")
	require.NoError(t, os.MkdirAll(filepath.Join(client, "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(client, "a.html"), []byte("<html/>"), 0644))

	md, err := buildoutput.Scan(t.Context(), root, testFramework)
	require.NoError(t, err)

	require.Equal(t, "client", md.AssetsPath)
	require.Equal(t, []string{"a.html", "b/*"}, md.StaticRoutes)
}

func TestScanDoesNotRecurse(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "client", "assets", "js", "chunks")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "entry.js"), []byte("//"), 0644))

	md, err := buildoutput.Scan(t.Context(), root, testFramework)
	require.NoError(t, err)

	// Only the immediate child shows up, as a single wildcard.
	require.Equal(t, []string{"assets/*"}, md.StaticRoutes)
}

func TestScanMissingOutput(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := buildoutput.Scan(t.Context(), filepath.Join(t.TempDir(), "nope"), testFramework)
		var missing buildoutput.MissingError
		require.ErrorAs(t, err, &missing)
		require.Equal(t, ".", missing.Missing)
	})

	t.Run("missing assets dir", func(t *testing.T) {
		_, err := buildoutput.Scan(t.Context(), t.TempDir(), testFramework)
		var missing buildoutput.MissingError
		require.ErrorAs(t, err, &missing)
		require.Equal(t, "client", missing.Missing)
	})
}

func TestScanEmptyAssets(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "client"), 0755))

	md, err := buildoutput.Scan(t.Context(), root, testFramework)
	require.NoError(t, err)
	require.Empty(t, md.StaticRoutes)
}

func TestPlaceholderSourceIgnoresFilesystem(t *testing.T) {
	src := buildoutput.PlaceholderSource(testFramework)
	require.True(t, src.Volatile())

	md, err := src.Load(t.Context(), filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	require.Equal(t, buildoutput.PlaceholderAssetsPath, md.AssetsPath)
	require.Equal(t, []string{"_build/*", "_server/*", "assets/*", "favicon.ico"}, md.StaticRoutes)
}
