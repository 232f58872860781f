// The main package for the webbook executable.
package main

import (
	"github.com/spectralml/webbook-crawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
