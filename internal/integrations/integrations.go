// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package integrations is the registry of supported SSR frameworks. Each
// framework package registers its descriptor on import; the CLI imports
// them all.
package integrations

import (
	"sort"
	"sync"

	"github.com/laminarhq/laminar/internal/fnerrors"
	"github.com/laminarhq/laminar/internal/schema"
)

var (
	mu         sync.Mutex
	registered = map[string]schema.Framework{}
)

func Register(fw schema.Framework) {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := registered[fw.Name]; ok {
		panic("framework registered twice: " + fw.Name)
	}
	registered[fw.Name] = fw
}

func Lookup(name string) (schema.Framework, error) {
	mu.Lock()
	defer mu.Unlock()

	fw, ok := registered[name]
	if !ok {
		return schema.Framework{}, fnerrors.UsageError(
			"Supported frameworks: "+joinNames(), "unknown framework %q", name)
	}
	return fw, nil
}

func All() []schema.Framework {
	mu.Lock()
	defer mu.Unlock()

	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]schema.Framework, 0, len(names))
	for _, name := range names {
		out = append(out, registered[name])
	}
	return out
}

func joinNames() string {
	var out string
	for i, fw := range All() {
		if i > 0 {
			out += ", "
		}
		out += fw.Name
	}
	return out
}
