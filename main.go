package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/oncalldoc/invoice-api/api/handlers"
	"github.com/oncalldoc/invoice-api/config"
)

func main() {
	// optional .env for local development
	_ = godotenv.Load()

	a := handlers.App{}
	a.Config = *config.New()

	if a.Config.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	if err := a.Initialize(); err != nil {
		log.Fatal(err)
	}

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("invoice-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
