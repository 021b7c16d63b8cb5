// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package devsession drives the interactive development loop: watch the
// build output, invalidate the metadata cache on change, re-evaluate the
// plan, and surface what changed. Provisioning is not triggered here; the
// loop exists to keep the plan honest while the app is being worked on.
package devsession

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"

	"github.com/laminarhq/laminar/internal/console"
	"github.com/laminarhq/laminar/internal/console/colors"
	"github.com/laminarhq/laminar/internal/provision"
	"github.com/laminarhq/laminar/internal/schema"
)

// How long to sit on filesystem events before re-evaluating; build tools
// write many files in quick succession.
const settleDelay = 250 * time.Millisecond

type Session struct {
	deploy *provision.Session

	current []byte // stable JSON of the last evaluated plan
}

func New(deploy *provision.Session) *Session {
	return &Session{deploy: deploy}
}

// Run evaluates once, then re-evaluates whenever the build output changes,
// until the context is cancelled.
func (s *Session) Run(ctx context.Context) error {
	plan, err := s.deploy.Evaluate(ctx)
	if err != nil {
		return err
	}
	s.current = mustStableJSON(plan)

	out := console.Stdout(ctx)
	fmt.Fprintf(out, " %s watching %s\n", colors.Green("✓"), colors.Bold(s.deploy.OutputRoot))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watchRecursively(watcher, s.deploy.OutputRoot); err != nil {
		// The output may not exist yet in placeholder mode; watch its
		// parent so we notice it appearing.
		if os.IsNotExist(err) {
			if err := watcher.Add(filepath.Dir(s.deploy.OutputRoot)); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	var settle *time.Timer
	settled := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-watcher.Errors:
			fmt.Fprintf(console.Debug(ctx), "devsession: watch error: %v\n", err)

		case ev := <-watcher.Events:
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = watcher.Add(ev.Name)
				}
			}

			if settle == nil {
				settle = time.AfterFunc(settleDelay, func() { settled <- struct{}{} })
			} else {
				settle.Reset(settleDelay)
			}

		case <-settled:
			settle = nil
			if err := s.reevaluate(ctx); err != nil {
				fmt.Fprintln(console.Stderr(ctx), colors.Red(err.Error()))
			}
		}
	}
}

func (s *Session) reevaluate(ctx context.Context) error {
	if err := s.deploy.Invalidate(ctx); err != nil {
		return err
	}

	plan, err := s.deploy.Evaluate(ctx)
	if err != nil {
		return err
	}

	next := mustStableJSON(plan)
	if string(next) == string(s.current) {
		fmt.Fprintf(console.Debug(ctx), "devsession: plan unchanged\n")
		return nil
	}

	out := console.Stdout(ctx)
	fmt.Fprintf(out, " %s plan changed\n", colors.Bold("∆"))
	if d := diffPlans(s.current, next); d != "" {
		fmt.Fprint(out, d)
	}

	s.current = next
	return nil
}

func diffPlans(previous, next []byte) string {
	var a, b schema.CanonicalPlan
	if err := json.Unmarshal(previous, &a); err != nil {
		return ""
	}
	if err := json.Unmarshal(next, &b); err != nil {
		return ""
	}
	return cmp.Diff(a, b)
}

func mustStableJSON(plan *schema.CanonicalPlan) []byte {
	// Plans are plain data; see planning's determinism guarantees.
	raw, err := json.Marshal(plan)
	if err != nil {
		panic(err)
	}
	return raw
}

func watchRecursively(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
