package main

import "github.com/agentic-research/deckguard/cmd"

func main() {
	cmd.Execute()
}
