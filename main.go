// The main package for the article-preview executable.
package main

import (
	"github.com/luukumag/article-preview/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
