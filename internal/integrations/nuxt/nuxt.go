// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package nuxt

import (
	"github.com/laminarhq/laminar/internal/integrations"
	"github.com/laminarhq/laminar/internal/schema"
)

func init() {
	integrations.Register(Framework)
}

// Framework matches nitro's .output layout.
var Framework = schema.Framework{
	Name:           "nuxt",
	OutputDir:      ".output",
	AssetsDir:      "public",
	ServerDir:      "server",
	Handler:        "index.handler",
	InternalPrefix: "__nitro/*",
	PlaceholderRoutes: []string{
		"_nuxt/*",
		"favicon.ico",
	},
}
