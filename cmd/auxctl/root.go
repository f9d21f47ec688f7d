package main

import (
	"fmt"

	"github.com/AdamBeresnev/aux-analytics/internal/config"
	"github.com/AdamBeresnev/aux-analytics/internal/db"
	"github.com/AdamBeresnev/aux-analytics/internal/service"
	"github.com/AdamBeresnev/aux-analytics/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// commandContext opens the database once per invocation and hands out services over it.
type commandContext struct {
	dbPath *string
	db     *sqlx.DB
	store  *store.TournamentStore
}

func (c *commandContext) ensureDB() (*sqlx.DB, error) {
	if c.db != nil {
		return c.db, nil
	}

	path := *c.dbPath
	if path == "" {
		if err := config.LoadDotEnv(".env"); err != nil {
			return nil, err
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		path = cfg.DatabasePath
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.RunMigrations(database.DB); err != nil {
		database.Close()
		return nil, err
	}
	c.db = database
	c.store = store.NewTournamentStore(database)
	return database, nil
}

func (c *commandContext) close() {
	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
}

func (c *commandContext) tournaments() (*service.TournamentService, error) {
	database, err := c.ensureDB()
	if err != nil {
		return nil, err
	}
	return service.NewTournamentService(database, c.store), nil
}

func (c *commandContext) brackets() (*service.BracketGeneration, error) {
	database, err := c.ensureDB()
	if err != nil {
		return nil, err
	}
	return service.NewBracketService(database, c.store), nil
}

func (c *commandContext) rounds() (*service.RoundService, error) {
	database, err := c.ensureDB()
	if err != nil {
		return nil, err
	}
	return service.NewRoundService(database, c.store), nil
}

func newCommandContext() *commandContext {
	return &commandContext{dbPath: new(string)}
}

// newRootCommand builds the CLI over ctx. The caller closes ctx once Execute returns, whether or
// not the command failed.
func newRootCommand(ctx *commandContext) *cobra.Command {

	rootCmd := &cobra.Command{
		Use:           "auxctl",
		Short:         "Administer Aux Analytics tournaments",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(ctx.dbPath, "db", "", "SQLite database path (defaults to DATABASE_PATH)")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newTournamentsCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newBracketCommand(ctx))
	rootCmd.AddCommand(newCloseRoundCommand(ctx))
	rootCmd.AddCommand(newCloseDueCommand(ctx))

	return rootCmd
}
