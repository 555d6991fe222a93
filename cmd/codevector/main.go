// Package main provides the entry point for the codevector server.
package main

import (
	"os"

	"github.com/Aman-CERP/codevector/cmd/codevector/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
