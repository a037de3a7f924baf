// Package main provides the docmap CLI, a small event calendar built on the
// document layer. It doubles as a working example of the library: one root
// document per event, a single venue subdocument, keyed tickets and an
// ordered session agenda.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
