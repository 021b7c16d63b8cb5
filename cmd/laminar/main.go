// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package main

import (
	"github.com/spf13/cobra"

	"github.com/laminarhq/laminar/internal/cli/cmd"
	"github.com/laminarhq/laminar/internal/cli/fncobra"
)

func main() {
	fncobra.DoMain("laminar", func(root *cobra.Command) {
		cmd.RegisterCommands(root)
	})
}
