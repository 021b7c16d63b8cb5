// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package schema

// BuildMetadata is what the build output scanner learns about a framework
// build: where the static assets live and which top-level URL patterns they
// answer. It is immutable after creation and is the value the metadata cache
// holds per site.
type BuildMetadata struct {
	// AssetsPath is relative to the build output root.
	AssetsPath string `json:"assetsPath"`

	// StaticRoutes holds one pattern per immediate child of AssetsPath, in
	// enumeration order. Directories yield "<name>/*", files yield "<name>".
	// Never recursed deeper than one level.
	StaticRoutes []string `json:"staticRoutes"`
}
