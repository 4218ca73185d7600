package main

import (
	"fmt"
	"os"

	"dpformance-site/cmd"
)

// serve is a shortcut binary equivalent to "dpformance-site serve"
func main() {
	rootCmd := cmd.NewRootCmd()
	rootCmd.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
