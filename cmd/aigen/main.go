package main

import "github.com/feitianbubu/aigen/internal/cli"

func main() {
	cli.Execute()
}
