// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package solidstart

import (
	"github.com/laminarhq/laminar/internal/integrations"
	"github.com/laminarhq/laminar/internal/schema"
)

func init() {
	integrations.Register(Framework)
}

var Framework = schema.Framework{
	Name:           "solidstart",
	OutputDir:      "dist",
	AssetsDir:      "client",
	ServerDir:      "server",
	Handler:        "index.handler",
	InternalPrefix: "_server/*",
	PlaceholderRoutes: []string{
		"_build/*",
		"_server/*",
		"assets/*",
		"favicon.ico",
	},
}
