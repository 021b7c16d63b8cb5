// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package integrations_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laminarhq/laminar/internal/integrations"
	_ "github.com/laminarhq/laminar/internal/integrations/astro"
	_ "github.com/laminarhq/laminar/internal/integrations/nextjs"
	_ "github.com/laminarhq/laminar/internal/integrations/nuxt"
	_ "github.com/laminarhq/laminar/internal/integrations/remix"
	_ "github.com/laminarhq/laminar/internal/integrations/solidstart"
)

func TestRegisteredFrameworksAreComplete(t *testing.T) {
	all := integrations.All()
	require.Len(t, all, 5)

	for _, fw := range all {
		t.Run(fw.Name, func(t *testing.T) {
			require.NotEmpty(t, fw.OutputDir)
			require.NotEmpty(t, fw.AssetsDir)
			require.NotEmpty(t, fw.ServerDir)
			require.NotEmpty(t, fw.Handler)
			require.NotEmpty(t, fw.InternalPrefix)
			require.NotEmpty(t, fw.PlaceholderRoutes)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := integrations.Lookup("gatsby")
	require.Error(t, err)
	require.Contains(t, err.Error(), "gatsby")
}

func TestLookupKnown(t *testing.T) {
	fw, err := integrations.Lookup("solidstart")
	require.NoError(t, err)
	require.Equal(t, []string{"_build/*", "_server/*", "assets/*", "favicon.ico"}, fw.PlaceholderRoutes)
}
