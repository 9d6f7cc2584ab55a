package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/ovolkov/pawhub/internal/client/models"
	"github.com/ovolkov/pawhub/internal/devserver"
	"github.com/ovolkov/pawhub/internal/logging"
)

func main() {

	addr := flag.String("a", "127.0.0.1:8080", "listen address")
	secret := flag.String("s", "dev-secret", "token signing secret")
	flag.Parse()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	srv := devserver.New([]byte(*secret), logger)

	// A small known dataset so a fresh client has something to look at.
	srv.SeedUser("admin", "admin@pawhub.local", "admin", true)
	alice := srv.SeedUser("alice", "alice@pawhub.local", "password", false)
	srv.SeedPet(alice, "Rex", "dog", models.PetAdopt)
	srv.SeedPet(alice, "Whiskers", "cat", models.PetLost)

	log.Printf("devserver listening on %s", *addr)
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		log.Fatalf("%v", err)
	}
}
