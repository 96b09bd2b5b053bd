package main

import (
	"os"

	"github.com/sprintsense/balance-service/cmd/balancectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
