// Package main is the entry point for the remocast application.
package main

import (
	"github.com/samber/lo"

	"github.com/remocast/remocast/cmd"
	"github.com/remocast/remocast/config"
	"github.com/remocast/remocast/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
