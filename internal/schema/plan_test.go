// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laminarhq/laminar/internal/schema"
)

func TestOriginMapRoundTrip(t *testing.T) {
	origins := schema.OriginMap{
		"server": schema.ComputeOrigin{Bundle: "/b", Handler: "index.handler"},
		"assets": schema.StorageOrigin{Copy: []schema.CopySpec{{From: "client", Cached: true}}},
	}

	raw, err := json.Marshal(origins)
	require.NoError(t, err)

	var back schema.OriginMap
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, origins, back)
}

func TestOriginMapRejectsUnknownKind(t *testing.T) {
	var m schema.OriginMap
	err := json.Unmarshal([]byte(`{"x": {"kind": "queue"}}`), &m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "queue")
}
