package main

import (
	"poke-battle-logger/cmd"

	_ "go.uber.org/automaxprocs"
)

func main() {
	cmd.Execute()
}
