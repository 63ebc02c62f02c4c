package main

import "github.com/dimbot/lexctl/internal/cli"

func main() {
	cli.Execute()
}
