package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
)

func main() {
	// .env необязателен: configPath/swaggerPath могут прийти из окружения
	_ = godotenv.Load()

	app := mustBootstrapCarTrackAPI()
	defer app.Close()

	if err := app.Run(); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
