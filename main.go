package main

import (
	"log"

	"farm-hub/confs"
	"farm-hub/db"
	"farm-hub/server"
)

func main() {
	// load config
	err := confs.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// connect to database Postgres
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// run relay hub
	hub := server.NewServer(database)
	hub.Start()
}
