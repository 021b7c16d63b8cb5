// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package nextjs

import (
	"github.com/laminarhq/laminar/internal/integrations"
	"github.com/laminarhq/laminar/internal/schema"
)

func init() {
	integrations.Register(Framework)
}

// Framework matches the open-next build layout: server bundle and static
// assets side by side under .open-next.
var Framework = schema.Framework{
	Name:           "nextjs",
	OutputDir:      ".open-next",
	AssetsDir:      "assets",
	ServerDir:      "server-function",
	Handler:        "index.handler",
	InternalPrefix: "_next/data/*",
	PlaceholderRoutes: []string{
		"_next/*",
		"assets/*",
		"favicon.ico",
	},
}
