package main

import "github.com/andrescamacho/marssim-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
