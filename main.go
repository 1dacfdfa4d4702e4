package main

import "github.com/valpere/sentinel/cmd"

// Set by goreleaser ldflags.
var version = "dev"

func main() {
	cmd.Execute(version)
}
