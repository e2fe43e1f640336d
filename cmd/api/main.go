package main

import (
	"flag"
	"log"

	"github.com/kevinpasricha/team-to-doers/internal/api"
	"github.com/kevinpasricha/team-to-doers/internal/config"
	"github.com/kevinpasricha/team-to-doers/internal/database"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	log.Printf("Starting todos API v%s with config: %s", version, *configPath)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	store, err := database.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	a, err := api.NewApi(cfg, store)
	if err != nil {
		log.Fatal(err)
	}

	a.Serve()
}
