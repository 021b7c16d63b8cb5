// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	awsprovider "github.com/laminarhq/laminar/internal/providers/aws"

	"github.com/laminarhq/laminar/internal/buildoutput"
	"github.com/laminarhq/laminar/internal/integrations"
	"github.com/laminarhq/laminar/internal/metacache"
	"github.com/laminarhq/laminar/internal/provision"
	"github.com/laminarhq/laminar/internal/schema"
)

// siteFlags is what every site-scoped command needs to locate a build and
// name its infrastructure.
type siteFlags struct {
	site       string
	framework  string
	projectDir string
}

func (f *siteFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.site, "site", "", "Logical name of the site; resource names derive from it.")
	flags.StringVar(&f.framework, "framework", "", "Which framework produced the build (nextjs, nuxt, solidstart, remix, astro).")
	flags.StringVar(&f.projectDir, "project_dir", ".", "Directory holding the framework project.")

	_ = cobra.MarkFlagRequired(flags, "site")
	_ = cobra.MarkFlagRequired(flags, "framework")
}

func (f *siteFlags) resolve() (schema.Framework, string, error) {
	fw, err := integrations.Lookup(f.framework)
	if err != nil {
		return schema.Framework{}, "", err
	}

	return fw, filepath.Join(f.projectDir, fw.OutputDir), nil
}

// newSession assembles the deploy session: the metadata source strategy is
// picked here, once, and everything downstream is mode-agnostic.
func (f *siteFlags) newSession(interactive bool) (*provision.Session, error) {
	fw, outputRoot, err := f.resolve()
	if err != nil {
		return nil, err
	}

	var source buildoutput.MetadataSource
	if interactive {
		source = buildoutput.PlaceholderSource(fw)
	} else {
		source = buildoutput.ScanSource(fw)
	}

	persistDir := filepath.Join(f.projectDir, ".laminar", "cache")
	return provision.NewSession(f.site, outputRoot, fw, source, metacache.WithPersistence(persistDir)), nil
}

func awsSession(ctx context.Context) (*awsprovider.Session, error) {
	return awsprovider.ConfiguredSession(ctx, awsprovider.Conf{
		Profile:       viper.GetString("aws_profile"),
		Region:        viper.GetString("aws_region"),
		AssumeRoleArn: viper.GetString("assume_role_arn"),
	})
}
