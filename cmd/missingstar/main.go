package main

import "missingstar/internal/cli"

func main() {
	cli.Execute()
}
