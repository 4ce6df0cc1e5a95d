// Package main is the motorsim command line tool.
package main

import (
	"log"
	"os"

	"go.viam.com/motorlib/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr, nil)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
