package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"genconsole/internal/domain"
	"genconsole/internal/infra"
	"genconsole/internal/infra/keys"
	"genconsole/internal/sqlinline"
)

func main() {
	var (
		addFlag    string
		removeFlag string
		listFlag   bool
	)
	flag.StringVar(&addFlag, "add", "", "API key to append to the rotation pool")
	flag.StringVar(&removeFlag, "remove", "", "API key to remove from the pool")
	flag.BoolVar(&listFlag, "list", false, "print the configured keys in pool order")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "keys").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	if err := sqlinline.EnsureSchema(ctx, runner); err != nil {
		fmt.Fprintf(os.Stderr, "failed to apply schema: %v\n", err)
		os.Exit(1)
	}
	store := keys.NewStore(runner)

	switch {
	case addFlag != "":
		if err := store.Add(ctx, addFlag); err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				fmt.Fprintln(os.Stderr, "key already exists")
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "failed to add key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("key added")
	case removeFlag != "":
		if err := store.Remove(ctx, removeFlag); err != nil {
			fmt.Fprintf(os.Stderr, "failed to remove key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("key removed")
	case listFlag:
		values, err := store.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list keys: %v\n", err)
			os.Exit(1)
		}
		for i, v := range values {
			fmt.Printf("%2d  %s\n", i+1, v)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}
