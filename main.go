package main

import "svgslice/internal/cli"

func main() {
	cli.Execute()
}
