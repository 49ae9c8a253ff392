package main

import (
	"os"

	"github.com/timrogers/klip/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
