package main

import (
	"github.com/joho/godotenv"
	"github.com/lepinkainen/libris/cmd"
)

var execute = cmd.Execute

func main() {
	// Load optional .env file before config is read. Missing file is fine.
	_ = godotenv.Load()

	execute()
}
