// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package cmd

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/laminarhq/laminar/internal/cli/fncobra"
	"github.com/laminarhq/laminar/internal/console"
)

func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version.",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = fncobra.RunE(func(ctx context.Context, args []string) error {
		version := "devel"
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			version = info.Main.Version
		}

		fmt.Fprintf(console.Stdout(ctx), "laminar %s\n", version)
		return nil
	})

	return cmd
}
