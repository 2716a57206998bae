package main

import "github.com/wabisabi926/script.skinshortcuts/internal/cli"

func main() {
	cli.Execute()
}
