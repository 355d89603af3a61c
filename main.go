package main

import "stash-pricer/cmd"

func main() {
	cmd.Execute()
}
