// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package aws

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/laminarhq/laminar/internal/fnerrors"
)

const identityTokenEnv = "AWS_WEB_IDENTITY_TOKEN_FILE"

// Conf selects how the AWS session is established. Zero values defer to the
// SDK's own resolution (env, shared config, instance metadata).
type Conf struct {
	Profile       string
	Region        string
	AssumeRoleArn string
}

type Session struct {
	aws  aws.Config
	conf Conf
}

func hasWebIdentityEnvVar() bool {
	// Check if we run inside an AWS cluster with a configured IAM role.
	return os.Getenv(identityTokenEnv) != ""
}

// ConfiguredSession resolves credentials once; all service clients derive
// from the returned session.
func ConfiguredSession(ctx context.Context, conf Conf) (*Session, error) {
	var opts []func(*config.LoadOptions) error
	if conf.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(conf.Profile))
	}
	if conf.Region != "" {
		opts = append(opts, config.WithRegion(conf.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fnerrors.InvocationError("failed to load aws configuration: %w", err)
	}

	if conf.AssumeRoleArn != "" {
		stsclient := sts.NewFromConfig(cfg)
		assumed := cfg.Copy()
		assumed.Credentials = aws.NewCredentialsCache(
			stscreds.NewAssumeRoleProvider(stsclient, conf.AssumeRoleArn))
		return &Session{aws: assumed, conf: conf}, nil
	}

	if cfg.Region == "" && !hasWebIdentityEnvVar() {
		return nil, fnerrors.UsageError(
			"Set AWS_REGION or pass --aws_region.", "no aws region configured")
	}

	return &Session{aws: cfg, conf: conf}, nil
}

func (s *Session) Config() aws.Config { return s.aws }
func (s *Session) Region() string     { return s.aws.Region }
