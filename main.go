package main

import "github.com/Nirvanjha2004/outreach-composer/cmd"

func main() {
	cmd.Execute()
}
