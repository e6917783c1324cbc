package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/abduss/storefront/internal/app"
	"github.com/abduss/storefront/internal/config"
	"github.com/abduss/storefront/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type cli struct {
	apiURL   string
	store    string
	logLevel string

	app *app.App
}

func (c *cli) setup(cmd *cobra.Command) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.apiURL != "" {
		cfg.API.BaseURL = c.apiURL
	}
	if c.store != "" {
		cfg.Store.Driver = c.store
	}

	log, err := logger.New(c.logLevel, "console")
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, log, terminalNavigator{w: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		_ = c.app.Logger.Sync()
		c.app.Close()
	}
}

// terminalNavigator reports the gateway's navigations on stderr.
type terminalNavigator struct {
	w io.Writer
}

func (n terminalNavigator) Navigate(path string) {
	fmt.Fprintf(n.w, "navigate: %s\n", path)
}

func (n terminalNavigator) Redirect(path string) {
	fmt.Fprintf(n.w, "session ended, sign in again (redirect: %s)\n", path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
