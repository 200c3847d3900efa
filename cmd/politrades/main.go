package main

import "politrades/internal/cli"

func main() {
	cli.Execute()
}
