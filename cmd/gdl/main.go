package main

import (
	"os"

	"github.com/gurukul/gdl/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	os.Exit(cli.Exit(err, os.Stderr))
}
