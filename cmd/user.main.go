package main

import (
	"log"

	"user-service/internal/config"
	"user-service/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("User: No .env file found, relying on system env vars")
	}

	cfg := config.Load()
	server.NewServer(cfg) // handles lifecycle & shutdown internally
}
