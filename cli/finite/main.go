package main

import (
	"log"

	"github.com/frankonly/finite/cli"
)

func main() {
	if err := cli.Init(); err != nil {
		log.Fatalf("failed to initialize finite: %v", err)
	}

	cli.Execute()
}
