// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package fnerrors

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestErrorFormatting(t *testing.T) {
	cases := []struct {
		err      error
		expected string
	}{
		{err: UsageError("Run 'laminar build' first.", "build output is stale"),
			expected: "Failed: build output is stale\n\n  Run 'laminar build' first.\n"},
		{err: New("wrapping it: %w", BadInputError("metadata missing")),
			expected: "Failed: wrapping it: metadata missing\n"},
	}

	for _, c := range cases {
		var out bytes.Buffer
		Format(&out, c.err)

		if d := cmp.Diff(c.expected, out.String()); d != "" {
			t.Errorf("mismatch (-want +got):\n%s", d)
		}
	}
}
