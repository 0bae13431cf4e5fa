package main

import "github.com/devnullvoid/dungeondraw/internal/cli"

func main() {
	cli.Execute()
}
