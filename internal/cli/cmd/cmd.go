// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package cmd

import (
	"github.com/spf13/cobra"

	// Register all supported frameworks.
	_ "github.com/laminarhq/laminar/internal/integrations/astro"
	_ "github.com/laminarhq/laminar/internal/integrations/nextjs"
	_ "github.com/laminarhq/laminar/internal/integrations/nuxt"
	_ "github.com/laminarhq/laminar/internal/integrations/remix"
	_ "github.com/laminarhq/laminar/internal/integrations/solidstart"
)

func RegisterCommands(root *cobra.Command) {
	root.AddCommand(NewPlanCmd())
	root.AddCommand(NewDeployCmd())
	root.AddCommand(NewDevCmd())
	root.AddCommand(NewVersionCmd())
}
