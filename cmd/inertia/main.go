// Package main is the single-binary entrypoint for Inertia.
// Inertia is a local-first momentum engine — one binary, state on disk.
package main

import "github.com/inertia-app/inertia/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
