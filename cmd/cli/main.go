package main

import (
	"context"
	"log"
	"path/filepath"

	"github.com/ovolkov/pawhub/internal/client/cli"
	"github.com/ovolkov/pawhub/internal/client/config"
	"github.com/ovolkov/pawhub/internal/filex"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	// A relative DB path goes under ./data so the token store does not
	// litter whatever directory the binary is launched from.
	if !filepath.IsAbs(cfg.DBPath) {
		dir, err := filex.EnsureSubDir("data")
		if err != nil {
			log.Fatalf("%v", err)
		}
		cfg.DBPath = filepath.Join(dir, cfg.DBPath)
	}

	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
