// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package fnerrors

import (
	"errors"
	"fmt"
	"io"

	"github.com/kr/text"
	"github.com/morikuni/aec"
	"github.com/laminarhq/laminar/internal/fnerrors/stacktrace"
)

// New returns a new error for a format specifier and optional args with the
// stack trace at the point of invocation.
func New(format string, args ...interface{}) error {
	return &fnError{Err: fmt.Errorf(format, args...), stack: stacktrace.New()}
}

// Configuration or invocation is not correct and requires user intervention.
func UsageError(what, whyFmt string, args ...interface{}) error {
	return &usageError{
		fnError: fnError{Err: fmt.Errorf(whyFmt, args...), stack: stacktrace.New()},
		Why:     fmt.Sprintf(whyFmt, args...),
		What:    what,
	}
}

// Unexpected situation.
func InternalError(format string, args ...interface{}) error {
	return &internalError{
		fnError: fnError{Err: fmt.Errorf(format, args...), stack: stacktrace.New()},
	}
}

// The input does not match our expectations (e.g. missing bits, wrong
// version, etc).
func BadInputError(format string, args ...interface{}) error {
	return &badInputError{
		fnError: fnError{Err: fmt.Errorf(format, args...), stack: stacktrace.New()},
	}
}

// A call to a remote endpoint failed, perhaps due to a transient issue.
func InvocationError(format string, args ...interface{}) error {
	return &invocationError{
		fnError: fnError{Err: fmt.Errorf(format, args...), stack: stacktrace.New()},
	}
}

// This error is purely for wiring and ensures that laminar exits with an
// appropriate exit code. The error content has to be output independently.
func ExitWithCode(err error, code int) error {
	return &exitError{fnError: fnError{Err: err, stack: stacktrace.New()}, code: code}
}

// Wraps an error with a stack trace at the point of invocation.
type fnError struct {
	Err   error
	stack stacktrace.StackTrace
}

func (f *fnError) Error() string { return f.Err.Error() }
func (f *fnError) Unwrap() error { return f.Err }

// Signature is compatible with pkg/errors and allows frameworks like Sentry
// to automatically extract the frame.
func (f *fnError) StackTrace() stacktrace.StackTrace { return f.stack }

type usageError struct {
	fnError
	Why  string
	What string
}

func (e *usageError) Error() string {
	return fmt.Sprintf("%s\n\n  %s", e.Why, e.What)
}

type internalError struct {
	fnError
}

func (e *internalError) Error() string { return e.Err.Error() }

type badInputError struct {
	fnError
}

func (e *badInputError) Error() string { return e.Err.Error() }

type invocationError struct {
	fnError
}

func (e *invocationError) Error() string {
	return fmt.Sprintf("failed when calling resource: %s", e.Err.Error())
}

type ExitError interface {
	ExitCode() int
}

type exitError struct {
	fnError
	code int
}

func (e *exitError) Error() string { return e.Err.Error() }
func (e *exitError) ExitCode() int { return e.code }

type FormatOptions struct {
	// true to use ANSI colors.
	colors bool
}

type FormatOption func(*FormatOptions)

func WithColors(colors bool) FormatOption {
	return func(opts *FormatOptions) {
		opts.colors = colors
	}
}

func Format(w io.Writer, err error, args ...FormatOption) {
	opts := &FormatOptions{colors: false}
	for _, opt := range args {
		opt(opts)
	}

	if opts.colors {
		fmt.Fprint(w, aec.RedF.With(aec.Bold).Apply("Failed: "))
	} else {
		fmt.Fprint(w, "Failed: ")
	}

	cause := err
	// Keep unwrapping through plain wrappers; typed errors know how to
	// render themselves.
	for {
		if _, plain := cause.(*fnError); !plain {
			break
		}
		if x := errors.Unwrap(cause); x != nil {
			cause = x
		} else {
			break
		}
	}

	format(w, cause, opts)
}

func format(w io.Writer, err error, opts *FormatOptions) {
	if err == nil {
		return
	}

	switch x := err.(type) {
	case *usageError:
		formatUsageError(w, x, opts)

	case *internalError:
		fmt.Fprintf(w, "%s: %s\n", formatLabel("internal error", opts.colors), x.Err.Error())
		fmt.Fprintln(w)
		fmt.Fprintf(w, "This was unexpected, please file a bug at https://github.com/laminarhq/laminar/issues\n")

	case *invocationError:
		fmt.Fprintf(w, "%s: %s\n", formatLabel("invocation error", opts.colors), x.Err.Error())
		fmt.Fprintln(w)
		fmt.Fprintf(w, "This was unexpected, but could be transient. Please try again.\n")

	default:
		fmt.Fprintf(w, "%s\n", x.Error())
	}
}

func formatUsageError(w io.Writer, err *usageError, opts *FormatOptions) {
	// XXX don't wordwrap if terminal is below 80 chars in width.
	errTxt := text.Wrap(err.Why, 80)
	fmt.Fprintf(w, "%s\n\n  %s\n", errTxt, bold(err.What, opts.colors))
}

func formatLabel(str string, colors bool) string {
	if colors {
		return aec.CyanF.Apply(str)
	}
	return str
}

func bold(str string, colors bool) string {
	if colors {
		return aec.Bold.Apply(str)
	}
	return str
}
