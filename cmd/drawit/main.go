package main

import "github.com/mcoot/drawit/internal/cli"

func main() {
	cli.Execute()
}
