// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package aws realizes canonical plans on AWS: S3 for storage origins,
// Lambda for compute origins, CloudFront for the distribution in front.
package aws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/laminarhq/laminar/internal/console"
	"github.com/laminarhq/laminar/internal/fnerrors"
	"github.com/laminarhq/laminar/internal/provision"
	"github.com/laminarhq/laminar/internal/schema"
)

type Provisioner struct {
	session    *Session
	outputRoot string

	s3         *s3.Client
	cloudfront *cloudfront.Client
	lambda     *lambda.Client
	iam        *iam.Client
}

var _ provision.Provisioner = (*Provisioner)(nil)

// NewProvisioner binds a provisioner to one resolved session and one build
// output root; storage copy specs are relative to the latter.
func NewProvisioner(session *Session, outputRoot string) *Provisioner {
	cfg := session.Config()
	return &Provisioner{
		session:    session,
		outputRoot: outputRoot,
		s3:         s3.NewFromConfig(cfg),
		cloudfront: cloudfront.NewFromConfig(cfg),
		lambda:     lambda.NewFromConfig(cfg),
		iam:        iam.NewFromConfig(cfg),
	}
}

func (p *Provisioner) CreateBucket(ctx context.Context, site string) (*provision.Bucket, error) {
	name := fmt.Sprintf("laminar-%s-assets", site)

	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	// us-east-1 is the default and rejects an explicit constraint.
	if region := p.session.Region(); region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}

	if _, err := p.s3.CreateBucket(ctx, input); err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if !errors.As(err, &owned) {
			return nil, fnerrors.InvocationError("failed to create bucket %q: %w", name, err)
		}
	}

	return &provision.Bucket{Name: name, Region: p.session.Region()}, nil
}

func (p *Provisioner) CreateServersAndDistribution(ctx context.Context, site string, bucket *provision.Bucket, plan *schema.CanonicalPlan) (*provision.Deployment, error) {
	lambdaClient := p.lambda
	if plan.Edge {
		// Functions that attach at the edge must live in us-east-1.
		lambdaClient = lambda.NewFromConfig(p.session.Config(), func(o *lambda.Options) {
			o.Region = "us-east-1"
		})
	}

	originDomains := map[string]string{}
	functionARNs := map[string]string{}

	var roleArn string

	names := make([]string, 0, len(plan.Origins))
	for name := range plan.Origins {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch origin := plan.Origins[name].(type) {
		case schema.ComputeOrigin:
			if roleArn == "" {
				arn, err := ensureServerRole(ctx, p.iam, site)
				if err != nil {
					return nil, err
				}
				roleArn = arn
			}

			arn, domain, err := createServer(ctx, lambdaClient, site, name, origin, roleArn)
			if err != nil {
				return nil, err
			}
			if err := waitActive(ctx, lambdaClient, fmt.Sprintf("laminar-%s-%s", site, name)); err != nil {
				return nil, fnerrors.InvocationError("function %q never became active: %w", name, err)
			}

			functionARNs[name] = arn
			originDomains[name] = domain
			console.Logger(ctx).Info().Str("origin", name).Str("domain", domain).Msg("server ready")

		case schema.StorageOrigin:
			sync := &syncer{
				client:              p.s3,
				defaultCacheControl: plan.DefaultCacheHeaders["cache-control"],
			}
			for _, spec := range origin.Copy {
				wrote, err := sync.syncCopySpec(ctx, bucket.Name, p.outputRoot, spec)
				if err != nil {
					return nil, fnerrors.InvocationError("failed to sync origin %q: %w", name, err)
				}
				console.Logger(ctx).Info().Str("origin", name).Int("uploaded", wrote).Msg("assets synced")
			}
			originDomains[name] = fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket.Name, bucket.Region)

		default:
			return nil, fnerrors.InternalError("origin %q has unknown kind %T", name, origin)
		}
	}

	cfArns, err := publishFunctions(ctx, p.cloudfront, site, plan)
	if err != nil {
		return nil, err
	}

	conf, err := distributionConfig(site, plan, originDomains, cfArns)
	if err != nil {
		return nil, err
	}

	dist, err := ensureDistribution(ctx, p.cloudfront, site, conf)
	if err != nil {
		return nil, err
	}

	url := *dist.DomainName
	if !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	return &provision.Deployment{
		DistributionID: *dist.Id,
		URL:            url,
		FunctionARNs:   functionARNs,
	}, nil
}
