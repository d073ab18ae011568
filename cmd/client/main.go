package main

import (
	"context"
	"log"
	"os"

	"github.com/parcel-ng/parcel-client/internal/buildinfo"
	"github.com/parcel-ng/parcel-client/internal/client/cli"
	"github.com/parcel-ng/parcel-client/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
