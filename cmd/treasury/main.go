package main

import "github.com/rustyeddy/treasury/internal/cli"

func main() {
	cli.Execute()
}
