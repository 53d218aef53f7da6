package main

import (
	"log"

	"github.com/warebots/fleetsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
