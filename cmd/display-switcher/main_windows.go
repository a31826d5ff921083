//go:build windows

package main

import (
	"os"

	"display-profile-switcher/internal/ccd"
	"display-profile-switcher/internal/cli"
)

func main() {
	if err := cli.Execute(ccd.New()); err != nil {
		os.Exit(1)
	}
}
