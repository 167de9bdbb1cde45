package main

import (
	"os"

	"github.com/querydesk/querydesk/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
