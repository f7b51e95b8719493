package main

import (
	"modbot/cmd/handlers"
	"modbot/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
