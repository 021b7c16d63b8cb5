// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package remix

import (
	"github.com/laminarhq/laminar/internal/integrations"
	"github.com/laminarhq/laminar/internal/schema"
)

func init() {
	integrations.Register(Framework)
}

var Framework = schema.Framework{
	Name:           "remix",
	OutputDir:      "build",
	AssetsDir:      "client",
	ServerDir:      "server",
	Handler:        "index.handler",
	InternalPrefix: "__manifest",
	PlaceholderRoutes: []string{
		"assets/*",
		"favicon.ico",
	},
}
