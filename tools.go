//go:build tools
// +build tools

// Package sentiview pins go:generate tools (mockgen) in go.mod.
package sentiview

import (
	_ "go.uber.org/mock/mockgen"
)
