package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/mirocommunity/localtv/internal/pkg/env"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	dbURL := fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		env.GetEnv("DB_USER", "localtv"),
		env.GetEnv("DB_PASSWORD", "localtv"),
		env.GetEnv("DB_HOST", "db"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", "localtv_db"),
	)

	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		log.Fatalf("migration init failed: %v", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Printf("source close error: %v", srcErr)
		}
		if dbErr != nil {
			log.Printf("database close error: %v", dbErr)
		}
	}()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if len(os.Args) < 3 {
			printUsage()
			os.Exit(1)
		}
		n, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			log.Fatalf("steps needs a number: %v", convErr)
		}
		err = m.Steps(n)
	case "version":
		v, dirty, vErr := m.Version()
		if vErr != nil {
			log.Fatalf("version: %v", vErr)
		}
		fmt.Printf("version=%d dirty=%v\n", v, dirty)
		return
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("migration %s failed: %v", command, err)
	}
	log.Printf("migration %s done", command)
}

func printUsage() {
	fmt.Println("usage: migrate <up|down|steps N|version>")
}
