package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/worthboard/internal/client/cli"
	"github.com/dmitrijs2005/worthboard/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
