// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package provision

import (
	"context"
	"fmt"

	"github.com/laminarhq/laminar/internal/buildoutput"
	"github.com/laminarhq/laminar/internal/console"
	"github.com/laminarhq/laminar/internal/console/colors"
	"github.com/laminarhq/laminar/internal/metacache"
	"github.com/laminarhq/laminar/internal/planning"
	"github.com/laminarhq/laminar/internal/planning/validation"
	"github.com/laminarhq/laminar/internal/schema"
)

// Session is one deploy session for one site: it owns the metadata cache
// and re-runs the evaluation pipeline on demand. Evaluations are cheap
// after the first; the cache shields them from the scanner's I/O.
type Session struct {
	Site       string
	OutputRoot string
	Framework  schema.Framework
	Source     buildoutput.MetadataSource

	cache *metacache.Store
}

func NewSession(site, outputRoot string, fw schema.Framework, source buildoutput.MetadataSource, opts ...metacache.Option) *Session {
	return &Session{
		Site:       site,
		OutputRoot: outputRoot,
		Framework:  fw,
		Source:     source,
		cache:      metacache.NewStore(opts...),
	}
}

// Evaluate runs scanner → cache → compiler → validator and returns the
// canonical plan. Scanner and compiler failures propagate unchanged; the
// session performs no retries, as none of these failures are transient.
func (s *Session) Evaluate(ctx context.Context) (*schema.CanonicalPlan, error) {
	md, err := s.cache.Get(ctx, s.Site, s.Source, s.OutputRoot)
	if err != nil {
		return nil, err
	}

	plan := planning.NewPlanner(s.Framework).Compile(s.OutputRoot, md)
	return validation.Validate(plan)
}

// Invalidate drops cached metadata, forcing the next Evaluate to rescan.
func (s *Session) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, s.Site)
}

// Deploy evaluates the plan and hands it to the provisioner.
func (s *Session) Deploy(ctx context.Context, p Provisioner) (*Deployment, error) {
	plan, err := s.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	bucket, err := p.CreateBucket(ctx, s.Site)
	if err != nil {
		return nil, err
	}

	console.Logger(ctx).Info().Str("site", s.Site).Str("bucket", bucket.Name).Msg("bucket ready")

	deployment, err := p.CreateServersAndDistribution(ctx, s.Site, bucket, plan)
	if err != nil {
		return nil, err
	}

	out := console.Stdout(ctx)
	fmt.Fprintf(out, "\n %s %s deployed.\n", colors.Green("✓"), colors.Bold(s.Site))
	fmt.Fprintf(out, "   %s\n", deployment.URL)

	return deployment, nil
}
