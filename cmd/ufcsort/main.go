package main

import (
	"os"

	"github.com/dinghy6/sabnzbd-scripts/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
