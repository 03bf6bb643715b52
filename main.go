package main

import "github.com/iamwavecut/hrbots/internal/cli"

func main() {
	cli.Execute()
}
