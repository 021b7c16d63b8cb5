// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package metacache memoizes build metadata per site for the duration of a
// deploy session, shielding plan re-evaluations from the scanner's
// filesystem cost. Under a non-volatile source, a site's build output is
// scanned at most once per session.
package metacache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/laminarhq/laminar/internal/buildoutput"
	"github.com/laminarhq/laminar/internal/console"
	"github.com/laminarhq/laminar/internal/fnerrors"
	"github.com/laminarhq/laminar/internal/schema"
	"github.com/laminarhq/laminar/internal/sync/ctxmutex"
)

type Store struct {
	persistDir string

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	serialize *ctxmutex.Mutex

	// Guarded by serialize, not mu: holders of the entry lock own these.
	computed bool
	md       *schema.BuildMetadata
}

type Option func(*Store)

// WithPersistence keeps each site's serialized metadata under dir, so that
// separate evaluation passes within one session can share scan results.
func WithPersistence(dir string) Option {
	return func(s *Store) { s.persistDir = dir }
}

func NewStore(opts ...Option) *Store {
	s := &Store{entries: map[string]*entry{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the build metadata for site, computing it via source on first
// use. Repeated calls return the same value. Concurrent calls for the same
// site serialize on a per-site guard, so the underlying scan runs at most
// once. A volatile source is always re-run.
func (s *Store) Get(ctx context.Context, site string, source buildoutput.MetadataSource, outputRoot string) (*schema.BuildMetadata, error) {
	e := s.entryFor(site)

	if !e.serialize.Lock(ctx) {
		return nil, ctx.Err()
	}
	defer e.serialize.Unlock()

	if source.Volatile() {
		md, err := source.Load(ctx, outputRoot)
		if err != nil {
			return nil, err
		}
		e.computed = true
		e.md = md
		return md, nil
	}

	if e.computed {
		return e.md, nil
	}

	if md := s.loadPersisted(ctx, site); md != nil {
		e.computed = true
		e.md = md
		return md, nil
	}

	md, err := source.Load(ctx, outputRoot)
	if err != nil {
		return nil, err
	}

	e.computed = true
	e.md = md
	s.persist(ctx, site, md)

	return md, nil
}

// Invalidate drops any stored metadata for site; the next Get recomputes.
// It takes the same per-site guard as Get, so an invalidation never
// interleaves with an in-flight load and the at-most-one-scan guarantee
// holds across it.
func (s *Store) Invalidate(ctx context.Context, site string) error {
	e := s.entryFor(site)

	if !e.serialize.Lock(ctx) {
		return ctx.Err()
	}
	defer e.serialize.Unlock()

	e.computed = false
	e.md = nil

	if s.persistDir != "" {
		os.Remove(s.persistPath(site))
	}
	return nil
}

func (s *Store) entryFor(site string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[site]
	if !ok {
		e = &entry{serialize: ctxmutex.NewMutex()}
		s.entries[site] = e
	}
	return e
}

func (s *Store) persistPath(site string) string {
	return filepath.Join(s.persistDir, site+".json")
}

// Cache storage anomalies are never fatal: a missing or corrupt file is a
// miss, surfaced only on the debug channel.
func (s *Store) loadPersisted(ctx context.Context, site string) *schema.BuildMetadata {
	if s.persistDir == "" {
		return nil
	}

	raw, err := os.ReadFile(s.persistPath(site))
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(console.Debug(ctx), "metacache: failed to read %q: %v\n", s.persistPath(site), err)
		}
		return nil
	}

	md := &schema.BuildMetadata{}
	if err := json.Unmarshal(raw, md); err != nil {
		fmt.Fprintf(console.Debug(ctx), "metacache: discarding corrupt entry %q: %v\n", s.persistPath(site), err)
		return nil
	}

	if md.AssetsPath == "" {
		fmt.Fprintf(console.Debug(ctx), "metacache: discarding incomplete entry %q\n", s.persistPath(site))
		return nil
	}

	return md
}

func (s *Store) persist(ctx context.Context, site string, md *schema.BuildMetadata) {
	if s.persistDir == "" {
		return
	}

	if err := os.MkdirAll(s.persistDir, 0755); err != nil {
		fmt.Fprintf(console.Debug(ctx), "metacache: %v\n", err)
		return
	}

	raw, err := json.Marshal(md)
	if err != nil {
		// BuildMetadata is plain data; this can't happen.
		fmt.Fprintf(console.Debug(ctx), "metacache: %v\n", fnerrors.InternalError("failed to serialize metadata: %w", err))
		return
	}

	if err := atomic.WriteFile(s.persistPath(site), bytes.NewReader(raw)); err != nil {
		fmt.Fprintf(console.Debug(ctx), "metacache: failed to persist %q: %v\n", site, err)
	}
}
