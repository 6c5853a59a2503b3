package main

import (
	"log"

	"github.com/MrSnakeDoc/linkshelf/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ linkshelf failed to start: %v", err)
	}
}
