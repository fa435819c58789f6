package main

import "github.com/emiliopalmerini/formab/internal/cli"

func main() {
	cli.Execute()
}
