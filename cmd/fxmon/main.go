package main

import (
	"github.com/joho/godotenv"

	"fxmon/internal/cli"
)

func init() { _ = godotenv.Load() }

func main() {
	cli.Execute()
}
