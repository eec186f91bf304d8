package main

import "ricecast/cmd/ricecast/cmd"

func main() {
	cmd.Execute()
}
