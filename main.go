package main

import "github.com/bz888/parley/cmd"

func main() {
	cmd.Execute()
}
