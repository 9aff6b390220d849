package main

import "github.com/giantswarm/procmux/internal/cli"

func main() {
	cli.Execute()
}
