package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/cli"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/client"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/sessionkeeper/internal/flagx"
)

func localStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "sessionkeeper")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.db"), nil
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	path, err := localStorePath()
	if err != nil {
		return fmt.Errorf("local store: %w", err)
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer db.Close()

	store := client.NewRepositoryTokenStore(credentials.NewSQLiteRepository(db), cfg.ServerEndpointAddr)

	c, err := client.NewGRPCClient(ctx, cfg.ServerEndpointAddr, cfg.RequestTimeout, store)
	if err != nil {
		return err
	}
	defer c.Close()

	app := cli.NewApp(c, os.Stdin, os.Stdout)

	valueFlags := append([]string{"-c", "-config"}, config.ValueFlags...)
	if args := flagx.Positional(os.Args[1:], valueFlags); len(args) > 0 {
		return app.Execute(ctx, args[0], args[1:])
	}

	app.Root(ctx)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}
