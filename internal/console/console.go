// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package console

import (
	"context"
	"io"
	"os"

	"github.com/kr/text"
	"github.com/rs/zerolog"
)

type contextKey string

const outputsKey contextKey = "laminar.console.outputs"

type outputs struct {
	stdout io.Writer
	stderr io.Writer
	debug  io.Writer
	logger *zerolog.Logger
}

// WithOutputs rebinds the writers that Stdout/Stderr/Debug hand out. The
// zero values fall back to the process' own streams.
func WithOutputs(ctx context.Context, stdout, stderr, debug io.Writer) context.Context {
	logger := zerolog.New(debug).With().Timestamp().Logger()
	return context.WithValue(ctx, outputsKey, &outputs{stdout, stderr, debug, &logger})
}

func outputsOf(ctx context.Context) *outputs {
	if o, ok := ctx.Value(outputsKey).(*outputs); ok {
		return o
	}
	return nil
}

func Stdout(ctx context.Context) io.Writer {
	if o := outputsOf(ctx); o != nil && o.stdout != nil {
		return o.stdout
	}
	return os.Stdout
}

func Stderr(ctx context.Context) io.Writer {
	if o := outputsOf(ctx); o != nil && o.stderr != nil {
		return o.stderr
	}
	return os.Stderr
}

// Debug returns where debug output goes; it is never user-facing.
func Debug(ctx context.Context) io.Writer {
	if o := outputsOf(ctx); o != nil && o.debug != nil {
		return o.debug
	}
	return io.Discard
}

// Logger returns the structured debug logger bound to this context.
func Logger(ctx context.Context) *zerolog.Logger {
	if o := outputsOf(ctx); o != nil && o.logger != nil {
		return o.logger
	}
	nop := zerolog.Nop()
	return &nop
}

// Output returns a writer which prefixes each line with the given name, for
// sub-task output that should remain attributable.
func Output(ctx context.Context, name string) io.Writer {
	return text.NewIndentWriter(Stdout(ctx), []byte(name+": "))
}
