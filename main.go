package main

import "github.com/bricklake/bricksync/cmd"

func main() {
	cmd.Execute()
}
