// Package main is the entry point for the phone catalog service.
package main

import (
	"os"

	"github.com/gadgetph/phone-catalog/cmd/phone-catalog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
