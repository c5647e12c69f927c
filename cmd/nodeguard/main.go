package main

import "github.com/vietddude/nodeguard/internal/cli"

func main() {
	cli.Execute()
}
