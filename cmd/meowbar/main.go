// Package main is the entry point for the meowbar menu-bar cat.
package main

import (
	"log"
	"os"

	"github.com/meowbar/meowbar/internal/cli"
)

func main() {
	log.SetPrefix("[meowbar] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
