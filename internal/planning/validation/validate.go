// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package validation is the single gate between a compiled plan and the
// provisioner: it enforces cross-field consistency and fills defaults.
// Catching a malformed plan here is strictly cheaper than discovering it
// through a failed cloud call.
package validation

import (
	"fmt"
	"strings"

	"github.com/laminarhq/laminar/internal/schema"
)

// InvalidPlanError reports every structural invariant the plan violates. It
// indicates a compiler bug or an unsupported framework layout; it is fatal
// and never retried.
type InvalidPlanError struct {
	Violations []string
}

func (e InvalidPlanError) Error() string {
	return fmt.Sprintf("invalid deployment plan:\n  %s", strings.Join(e.Violations, "\n  "))
}

// DefaultCacheHeaders apply to storage responses without an explicit cache
// policy. Versioned assets get their long-lived headers from the copy spec
// instead.
var DefaultCacheHeaders = map[string]string{
	"cache-control": "public,max-age=0,s-maxage=86400,stale-while-revalidate=8640",
}

// Validate checks a compiled plan's structural invariants and returns the
// canonical form consumed by provisioning.
func Validate(plan *schema.DeploymentPlan) (*schema.CanonicalPlan, error) {
	var violations []string

	defaults := 0
	for i, b := range plan.Behaviors {
		if b.IsDefault() {
			defaults++
		}

		if b.Origin == "" {
			violations = append(violations, fmt.Sprintf("behavior #%d: no origin", i))
		} else if _, ok := plan.Origins[b.Origin]; !ok {
			violations = append(violations, fmt.Sprintf("behavior #%d (%q): references unknown origin %q", i, b.Pattern, b.Origin))
		}

		if b.CfFunction != "" {
			if _, ok := plan.CloudFrontFunctions[b.CfFunction]; !ok {
				violations = append(violations, fmt.Sprintf("behavior #%d (%q): references unknown cloudfront function %q", i, b.Pattern, b.CfFunction))
			}
		}
	}

	if defaults > 1 {
		violations = append(violations, fmt.Sprintf("%d behaviors have no pattern; at most one default is allowed", defaults))
	}

	for name, o := range plan.Origins {
		if o == nil {
			violations = append(violations, fmt.Sprintf("origin %q: no definition", name))
		}
	}

	// Dynamic, non-prefixed requests must land on compute.
	for i, b := range plan.Behaviors {
		if !b.IsDefault() || b.Origin == "" {
			continue
		}
		if o, ok := plan.Origins[b.Origin]; ok && !isCompute(o) {
			violations = append(violations, fmt.Sprintf("behavior #%d: default behavior must route to a compute origin", i))
		}
	}

	if len(violations) > 0 {
		return nil, InvalidPlanError{Violations: violations}
	}

	return canonicalize(plan), nil
}

func canonicalize(plan *schema.DeploymentPlan) *schema.CanonicalPlan {
	out := &schema.CanonicalPlan{
		DeploymentPlan:      *plan,
		DefaultCacheHeaders: DefaultCacheHeaders,
	}

	// Unset cache types default by origin kind.
	out.Behaviors = make([]schema.Behavior, len(plan.Behaviors))
	copy(out.Behaviors, plan.Behaviors)
	for i, b := range out.Behaviors {
		if b.CacheType != "" {
			continue
		}
		if isCompute(plan.Origins[b.Origin]) {
			out.Behaviors[i].CacheType = schema.CacheServer
		} else {
			out.Behaviors[i].CacheType = schema.CacheStatic
		}
	}

	return out
}

func isCompute(o schema.Origin) bool {
	switch o.(type) {
	case schema.ComputeOrigin, *schema.ComputeOrigin:
		return true
	}
	return false
}
