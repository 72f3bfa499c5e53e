package main

import (
	"os"

	"github.com/cadforge/solidwrap/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
