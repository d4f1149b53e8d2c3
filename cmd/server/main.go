package main

import "github.com/hongminglow/minibank/cmd/server/commands"

func main() {
	commands.Execute()
}
