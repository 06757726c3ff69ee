package main

import (
	"os"

	"github.com/lmoreira/jobmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
