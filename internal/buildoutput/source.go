// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package buildoutput

import (
	"context"

	"github.com/laminarhq/laminar/internal/schema"
)

// PlaceholderAssetsPath is the assets path reported while in interactive
// development, where no production build is required to exist.
const PlaceholderAssetsPath = "placeholder"

// MetadataSource yields build metadata for a site. It is selected once at
// session start: scanning for real deploys, a fixed placeholder for
// interactive development. Everything downstream is agnostic to which.
type MetadataSource interface {
	Load(ctx context.Context, outputRoot string) (*schema.BuildMetadata, error)

	// Volatile reports whether cached results must always be recomputed.
	Volatile() bool
}

// ScanSource performs a real filesystem scan of the build output.
func ScanSource(fw schema.Framework) MetadataSource {
	return scanSource{fw}
}

type scanSource struct {
	fw schema.Framework
}

func (s scanSource) Load(ctx context.Context, outputRoot string) (*schema.BuildMetadata, error) {
	return Scan(ctx, outputRoot, s.fw)
}

func (s scanSource) Volatile() bool { return false }

// PlaceholderSource substitutes a hardcoded best-guess route set, so local
// development can start the provisioning flow without a production-style
// build. It trades route-pattern accuracy for speed.
func PlaceholderSource(fw schema.Framework) MetadataSource {
	return placeholderSource{fw}
}

type placeholderSource struct {
	fw schema.Framework
}

func (p placeholderSource) Load(ctx context.Context, outputRoot string) (*schema.BuildMetadata, error) {
	routes := make([]string, len(p.fw.PlaceholderRoutes))
	copy(routes, p.fw.PlaceholderRoutes)

	return &schema.BuildMetadata{
		AssetsPath:   PlaceholderAssetsPath,
		StaticRoutes: routes,
	}, nil
}

// Placeholder results are cheap to recompute and must never be shadowed by
// stale scan output.
func (p placeholderSource) Volatile() bool { return true }
