package main

import (
	"fmt"
	"log"

	"github.com/patric-chuzhbe/artcls/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

func run() error {
	application, err := app.New()
	if err != nil {
		return fmt.Errorf("unable to initialize the application: %w", err)
	}
	defer application.Close()

	return application.Run()
}
