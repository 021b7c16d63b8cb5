// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/laminarhq/laminar/internal/cli/fncobra"
	"github.com/laminarhq/laminar/internal/devsession"
)

func NewDevCmd() *cobra.Command {
	var flags siteFlags
	var placeholder = true

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Watch the build output and keep the deployment plan up to date.",
		Args:  cobra.NoArgs,
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&placeholder, "placeholder", placeholder, "Use placeholder routes instead of scanning a production build.")

	cmd.RunE = fncobra.RunE(func(ctx context.Context, args []string) error {
		session, err := flags.newSession(placeholder)
		if err != nil {
			return err
		}

		return devsession.New(session).Run(ctx)
	})

	return cmd
}
