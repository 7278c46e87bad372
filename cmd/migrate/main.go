// Command migrate applies or rolls back the embedded schema migrations.
//
//	migrate up | down [steps] | status
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"

	"killbill-service/internal/config"
	"killbill-service/internal/db"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
)

func main() {
	flag.Parse()
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	m, err := db.NewMigrator(config.Load().DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	switch cmd := flag.Arg(0); cmd {
	case "", "up":
		err = m.Up()
	case "down":
		steps := 1
		if arg := flag.Arg(1); arg != "" {
			if steps, err = strconv.Atoi(arg); err != nil || steps < 1 {
				log.Fatalf("invalid step count %q", arg)
			}
		}
		err = m.Steps(-steps)
	case "status":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		if verr != nil {
			log.Fatal(verr)
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return
	default:
		log.Fatalf("unknown command %q (want up, down or status)", cmd)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(err)
	}
	fmt.Println("migrations complete")
}
