// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package buildoutput

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/laminarhq/laminar/internal/fnfs"
	"github.com/laminarhq/laminar/internal/schema"
)

// MissingError indicates the framework build did not run, or produced a
// layout we don't recognize. Deploys abort on it; retrying without
// rebuilding cannot succeed.
type MissingError struct {
	OutputRoot string
	Missing    string
}

func (e MissingError) Error() string {
	return fmt.Sprintf("build output missing: expected %q under %q; run your framework's build first", e.Missing, e.OutputRoot)
}

// Scan inspects a framework build output and derives which top-level URL
// patterns are served statically. It looks exactly one level deep under the
// assets directory: a child directory becomes "<name>/*", a child file
// becomes "<name>".
func Scan(ctx context.Context, outputRoot string, fw schema.Framework) (*schema.BuildMetadata, error) {
	if _, err := os.Stat(outputRoot); err != nil {
		if os.IsNotExist(err) {
			return nil, MissingError{OutputRoot: outputRoot, Missing: "."}
		}
		return nil, err
	}

	entries, err := fnfs.Local(outputRoot).ReadDir(fw.AssetsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, MissingError{OutputRoot: outputRoot, Missing: fw.AssetsDir}
		}
		return nil, err
	}

	md := &schema.BuildMetadata{AssetsPath: fw.AssetsDir}
	for _, entry := range entries {
		md.StaticRoutes = append(md.StaticRoutes, routeFor(entry))
	}

	return md, nil
}

func routeFor(entry fs.DirEntry) string {
	if entry.IsDir() {
		return entry.Name() + "/*"
	}
	return entry.Name()
}

// ServerBundle returns where the framework's packaged server code lives
// within the build output.
func ServerBundle(outputRoot string, fw schema.Framework) string {
	return filepath.Join(outputRoot, fw.ServerDir)
}
