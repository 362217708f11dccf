package main

import "github.com/Skotchmaster/game_store/cmd/gamestore/commands"

func main() {
	commands.Execute()
}
