package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/panyam/plateau/cmd/plateau/commands"
	"github.com/panyam/plateau/runtime"
)

func main() {
	// Optional env file for log level and CLI defaults; absence is fine.
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
	if levelStr := os.Getenv("PLATEAU_LOG_LEVEL"); levelStr != "" {
		if level, err := runtime.ParseLogLevel(levelStr); err == nil {
			runtime.SetLogLevel(level)
		}
	}
	commands.Execute()
}
