package main

import "github.com/bryanchriswhite/RetroDesk/cmd/retrodesk/commands"

func main() {
	commands.Execute()
}
