// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package planning compiles build metadata into a provider-agnostic
// deployment plan: origins, ordered routing behaviors, and edge function
// injections. Compilation is pure; all filesystem knowledge arrives via the
// metadata.
package planning

import (
	"fmt"

	"github.com/laminarhq/laminar/internal/buildoutput"
	"github.com/laminarhq/laminar/internal/schema"
)

const (
	// ServerOrigin is the compute origin serving dynamic requests.
	ServerOrigin = "server"
	// AssetsOrigin is the storage origin serving static build assets.
	AssetsOrigin = "assets"

	// ServerCfFunction rewrites the request before it reaches the compute
	// origin. Behaviors routed at the server reference it by name.
	ServerCfFunction = "serverCfFunction"
)

// hostHeaderRewrite preserves the host the client requested; the default
// edge path would otherwise present the distribution's own hostname to the
// server-rendered app.
const hostHeaderRewrite = `request.headers["x-forwarded-host"] = request.headers.host;`

type Planner struct {
	fw schema.Framework
}

func NewPlanner(fw schema.Framework) Planner {
	return Planner{fw: fw}
}

// Compile derives the deployment plan for a build rooted at outputRoot. It
// is deterministic: identical inputs yield identical plans, so repeated
// evaluations produce stable diffs.
func (p Planner) Compile(outputRoot string, md *schema.BuildMetadata) *schema.DeploymentPlan {
	plan := &schema.DeploymentPlan{
		Edge: p.fw.Edge,
		CloudFrontFunctions: map[string][]schema.CodeInjection{
			ServerCfFunction: {
				{Name: "hostHeaderRewrite", Code: hostHeaderRewrite},
			},
		},
		Origins: schema.OriginMap{
			ServerOrigin: schema.ComputeOrigin{
				Bundle:      buildoutput.ServerBundle(outputRoot, p.fw),
				Handler:     p.fw.Handler,
				Description: fmt.Sprintf("%s server handler", p.fw.Name),
			},
			AssetsOrigin: schema.StorageOrigin{
				Copy: []schema.CopySpec{
					{From: md.AssetsPath, To: "", Cached: true},
				},
			},
		},
	}

	// Order is precedence: the default catch-all first, then the
	// framework's own runtime-fetched assets, then one behavior per static
	// entry, in scan order.
	plan.Behaviors = append(plan.Behaviors,
		schema.Behavior{
			CacheType:  schema.CacheServer,
			Origin:     ServerOrigin,
			CfFunction: ServerCfFunction,
		},
		schema.Behavior{
			Pattern:    p.fw.InternalPrefix,
			CacheType:  schema.CacheServer,
			Origin:     ServerOrigin,
			CfFunction: ServerCfFunction,
		},
	)

	for _, route := range md.StaticRoutes {
		plan.Behaviors = append(plan.Behaviors, schema.Behavior{
			Pattern:   route,
			CacheType: schema.CacheStatic,
			Origin:    AssetsOrigin,
		})
	}

	return plan
}
