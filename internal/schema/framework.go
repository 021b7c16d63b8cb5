// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package schema

// Framework describes how a particular SSR framework lays out its production
// build, and is everything the plan compiler needs to know about it. Each
// supported framework registers one of these in internal/integrations.
type Framework struct {
	// Name is the framework identifier, e.g. "nextjs".
	Name string

	// OutputDir is the build output root, relative to the project dir.
	OutputDir string

	// AssetsDir is the subdirectory of OutputDir synced to static storage.
	AssetsDir string

	// ServerDir is the subdirectory of OutputDir holding the packaged
	// server bundle.
	ServerDir string

	// Handler is the compute entry point within ServerDir.
	Handler string

	// InternalPrefix is the framework's runtime asset prefix; requests
	// under it must reach the compute origin, not storage.
	InternalPrefix string

	// Edge requests edge execution for the compute origin by default.
	Edge bool

	// PlaceholderRoutes is the static route set assumed during interactive
	// development, when no production build is required to exist.
	PlaceholderRoutes []string
}
