package main

import (
	"log"

	"github.com/scholarmatch/scholarmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
