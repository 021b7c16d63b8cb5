// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package colors

import (
	"os"

	"github.com/morikuni/aec"
	"golang.org/x/term"
)

func Faded(str string) string {
	return aec.LightBlackF.Apply(str)
}

func Bold(str string) string {
	return aec.Bold.Apply(str)
}

func Green(str string) string {
	return aec.GreenF.Apply(str)
}

func Red(str string) string {
	return aec.RedF.Apply(str)
}

// Enabled reports whether stdout is a terminal that can take ANSI colors.
func Enabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
