package main

import "youbuildit/pkg/cli"

func main() {
	cli.Execute()
}
