// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package schema

import (
	"encoding/json"
	"fmt"
)

// CacheType selects the CDN cache policy attached to a behavior.
type CacheType string

const (
	// CacheServer marks responses produced by the compute origin; cached
	// briefly, revalidated per request.
	CacheServer CacheType = "server"
	// CacheStatic marks immutable build assets served from storage.
	CacheStatic CacheType = "static"
)

// Behavior is a single CDN routing rule. Behaviors are evaluated in order;
// the first behavior whose Pattern matches the request path wins. A behavior
// with an empty Pattern is the default and matches everything.
type Behavior struct {
	Pattern    string    `json:"pattern,omitempty"`
	CacheType  CacheType `json:"cacheType"`
	Origin     string    `json:"origin"`
	CfFunction string    `json:"cfFunction,omitempty"`
}

// IsDefault reports whether this behavior is the catch-all.
func (b Behavior) IsDefault() bool { return b.Pattern == "" }

// CodeInjection is a snippet spliced into a CloudFront Function at a named
// injection point.
type CodeInjection struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Origin is a backend that behaviors forward matched requests to. It is a
// closed variant: either a ComputeOrigin or a StorageOrigin, never both.
type Origin interface {
	originKind() string
}

// ComputeOrigin is a server function built from the framework's server
// bundle.
type ComputeOrigin struct {
	// Bundle is the directory holding the packaged server code.
	Bundle string `json:"bundle"`
	// Handler is the entry point within the bundle, e.g. "index.handler".
	Handler     string `json:"handler"`
	Description string `json:"description,omitempty"`
}

func (ComputeOrigin) originKind() string { return "compute" }

// StorageOrigin is a bucket populated from the build output.
type StorageOrigin struct {
	Copy []CopySpec `json:"copy"`
}

func (StorageOrigin) originKind() string { return "storage" }

// CopySpec describes one sync from the build output into the bucket. Cached
// content is assumed to carry versioned filenames and is served with
// long-lived cache headers.
type CopySpec struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Cached bool   `json:"cached"`
}

// DeploymentPlan is the provider-agnostic description of a site deployment:
// which origins exist, how requests route to them, and which edge function
// injections apply. Produced by the plan compiler, consumed by validation.
type DeploymentPlan struct {
	// Edge requests that the compute origin run at edge locations rather
	// than a single region.
	Edge bool `json:"edge,omitempty"`

	// CloudFrontFunctions maps an injection point name to the snippets
	// spliced into the edge request handler.
	CloudFrontFunctions map[string][]CodeInjection `json:"cloudFrontFunctions,omitempty"`

	Origins   OriginMap  `json:"origins"`
	Behaviors []Behavior `json:"behaviors"`
}

// CanonicalPlan is a DeploymentPlan that passed validation: defaults are
// filled in and all cross-references resolve. Only validation constructs it.
type CanonicalPlan struct {
	DeploymentPlan

	// DefaultCacheHeaders apply to storage responses that carry no
	// explicit cache policy of their own.
	DefaultCacheHeaders map[string]string `json:"defaultCacheHeaders"`
}

// OriginMap maps origin names to their definitions. It carries custom JSON
// round-tripping because Origin is an interface; encoding/json sorts map
// keys, which keeps serialized plans byte-stable.
type OriginMap map[string]Origin

func (m OriginMap) MarshalJSON() ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(m))
	for name, o := range m {
		data, err := MarshalOrigin(o)
		if err != nil {
			return nil, err
		}
		raw[name] = data
	}
	return json.Marshal(raw)
}

func (m *OriginMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(OriginMap, len(raw))
	for name, body := range raw {
		o, err := UnmarshalOrigin(body)
		if err != nil {
			return fmt.Errorf("origin %q: %w", name, err)
		}
		out[name] = o
	}
	*m = out
	return nil
}

type originEnvelope struct {
	Kind    string         `json:"kind"`
	Compute *ComputeOrigin `json:"compute,omitempty"`
	Storage *StorageOrigin `json:"storage,omitempty"`
}

// MarshalOrigin emits an origin in a tagged form so plan output is stable
// and self-describing.
func MarshalOrigin(o Origin) ([]byte, error) {
	switch x := o.(type) {
	case ComputeOrigin:
		return json.Marshal(originEnvelope{Kind: "compute", Compute: &x})
	case *ComputeOrigin:
		return json.Marshal(originEnvelope{Kind: "compute", Compute: x})
	case StorageOrigin:
		return json.Marshal(originEnvelope{Kind: "storage", Storage: &x})
	case *StorageOrigin:
		return json.Marshal(originEnvelope{Kind: "storage", Storage: x})
	}
	return nil, fmt.Errorf("unknown origin kind %T", o)
}

func UnmarshalOrigin(data []byte) (Origin, error) {
	var env originEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case "compute":
		if env.Compute == nil {
			return nil, fmt.Errorf("compute origin missing body")
		}
		return *env.Compute, nil
	case "storage":
		if env.Storage == nil {
			return nil, fmt.Errorf("storage origin missing body")
		}
		return *env.Storage, nil
	}
	return nil, fmt.Errorf("unknown origin kind %q", env.Kind)
}
