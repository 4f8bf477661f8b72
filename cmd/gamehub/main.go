package main

import (
	"github.com/joho/godotenv"

	"game-hub/cmd/gamehub/commands"
)

func main() {
	// GAMEHUB_API_URL and GAMEHUB_API_KEY may come from a local .env.
	_ = godotenv.Load()
	commands.Execute()
}
