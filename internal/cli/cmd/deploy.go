// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	awsprovider "github.com/laminarhq/laminar/internal/providers/aws"

	"github.com/laminarhq/laminar/internal/cli/fncobra"
)

func NewDeployCmd() *cobra.Command {
	var flags siteFlags

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the site: sync assets, provision servers, bind the distribution.",
		Args:  cobra.NoArgs,
	}

	flags.register(cmd.Flags())

	cmd.RunE = fncobra.RunE(func(ctx context.Context, args []string) error {
		session, err := flags.newSession(false)
		if err != nil {
			return err
		}

		aws, err := awsSession(ctx)
		if err != nil {
			return err
		}

		_, outputRoot, err := flags.resolve()
		if err != nil {
			return err
		}

		_, err = session.Deploy(ctx, awsprovider.NewProvisioner(aws, outputRoot))
		return err
	})

	return cmd
}
