// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package fncobra

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/laminarhq/laminar/internal/console"
	"github.com/laminarhq/laminar/internal/console/colors"
	"github.com/laminarhq/laminar/internal/fnerrors"
)

// DoMain is the shared entry point of every laminar binary: it wires the
// console, runs the root command, formats failures, and owns the exit code.
func DoMain(name string, registerCommands func(*cobra.Command)) {
	SetupViper()

	ctx := context.Background()

	debugPath := filepath.Join(configDir(), name+".log")
	debugLog := console.NewRotatedDebugLogger(debugPath)
	defer debugLog.Close()

	ctx = console.WithOutputs(ctx, os.Stdout, os.Stderr, debugLog)

	rootCmd := &cobra.Command{
		Use:           name,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	registerCommands(rootCmd)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	fnerrors.Format(console.Stderr(ctx), err, fnerrors.WithColors(colors.Enabled()))

	var exitErr fnerrors.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}
	os.Exit(1)
}

type CmdHandler func(context.Context, []string) error

func RunE(handler CmdHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return handler(cmd.Context(), args)
	}
}

func SetupViper() {
	viper.SetEnvPrefix("laminar")
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir())

	viper.SetDefault("aws_profile", "")
	_ = viper.BindEnv("aws_profile")

	viper.SetDefault("aws_region", "")
	_ = viper.BindEnv("aws_region")

	viper.SetDefault("assume_role_arn", "")
	_ = viper.BindEnv("assume_role_arn")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "failed to read config: %v\n", err)
		}
	}
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "laminar")
	}
	return ".laminar"
}
