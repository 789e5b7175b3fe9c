package main

import (
	"os"

	"netkb/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args))
}
