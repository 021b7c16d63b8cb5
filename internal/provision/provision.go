// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package provision defines the contract between a canonical plan and the
// infrastructure that realizes it. The engine behind the Provisioner
// interface owns all cloud calls; this package owns none.
package provision

import (
	"context"

	"github.com/laminarhq/laminar/internal/schema"
)

// Bucket is the storage handle returned by CreateBucket, used for asset
// sync and for reporting.
type Bucket struct {
	Name   string
	Region string
}

// Deployment holds the handles a finished deploy reports back to the user.
// Nothing in the planning core consumes these.
type Deployment struct {
	DistributionID string
	URL            string

	// FunctionARNs maps compute origin names to their provisioned
	// function.
	FunctionARNs map[string]string
}

// Provisioner turns a canonical plan into concrete infrastructure.
type Provisioner interface {
	CreateBucket(ctx context.Context, site string) (*Bucket, error)

	// CreateServersAndDistribution provisions the plan's compute origins,
	// syncs its storage origins into bucket, and binds everything behind a
	// CDN distribution whose routing mirrors the plan's behaviors.
	CreateServersAndDistribution(ctx context.Context, site string, bucket *Bucket, plan *schema.CanonicalPlan) (*Deployment, error)
}
