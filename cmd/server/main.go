package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/vaultkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/vaultkeeper/internal/server"
	"github.com/dmitrijs2005/vaultkeeper/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
