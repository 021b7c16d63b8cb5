// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/laminarhq/laminar/internal/cli/fncobra"
	"github.com/laminarhq/laminar/internal/console"
)

func NewPlanCmd() *cobra.Command {
	var flags siteFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compile and print the deployment plan, without provisioning anything.",
		Args:  cobra.NoArgs,
	}

	flags.register(cmd.Flags())

	cmd.RunE = fncobra.RunE(func(ctx context.Context, args []string) error {
		session, err := flags.newSession(false)
		if err != nil {
			return err
		}

		plan, err := session.Evaluate(ctx)
		if err != nil {
			return err
		}

		raw, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(console.Stdout(ctx), string(raw))
		return nil
	})

	return cmd
}
