package main

import "github.com/agentic-research/staticres/cmd"

func main() {
	cmd.Execute()
}
