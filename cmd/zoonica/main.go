package main

import "zoonica-gateway/internal/cli"

func main() {
	cli.Execute()
}
