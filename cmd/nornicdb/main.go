// Package main provides the nornicdb CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orneryd/nornicdb/pkg/auth"
	"github.com/orneryd/nornicdb/pkg/config"
	"github.com/orneryd/nornicdb/pkg/cypher"
	"github.com/orneryd/nornicdb/pkg/nornicdb"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "nornicdb",
		Short: "nornicdb - embedded property-graph database core",
	}
	rootCmd.PersistentFlags().String("data-dir", "./data", "data directory")
	rootCmd.PersistentFlags().String("config", "", "optional YAML config file overlay")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("nornicdb", version)
		},
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new, empty database in the data directory",
		RunE:  runInit,
	}
	rootCmd.AddCommand(initCmd)

	queryCmd := &cobra.Command{
		Use:   "query <cypher>",
		Short: "Run one read-only query against the database and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}
	rootCmd.AddCommand(queryCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Force a snapshot and truncate the WAL up to it",
		RunE:  runSnapshot,
	}
	rootCmd.AddCommand(snapshotCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Authenticate and report server status (the HTTP/Bolt surface is out of scope for this core)",
		RunE:  runServe,
	}
	serveCmd.Flags().String("username", "admin", "username to authenticate as")
	serveCmd.Flags().String("password", "", "password to authenticate with")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) *config.Config {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	configPath, _ := cmd.Flags().GetString("config")

	cfg := config.LoadFromEnvAndFile(configPath)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	engine, err := nornicdb.Open(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer engine.Close()

	if err := engine.CreateSnapshot(); err != nil {
		return fmt.Errorf("writing initial snapshot: %w", err)
	}

	fmt.Printf("initialized empty database at %s\n", cfg.DataDir)
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	engine, err := nornicdb.Open(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer engine.Close()

	seq, err := engine.Query(args[0])
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	rows, err := cypher.Collect(seq)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}

	for _, row := range rows {
		fmt.Println(row)
	}
	fmt.Printf("%d row(s)\n", len(rows))
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	engine, err := nornicdb.Open(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer engine.Close()

	if err := engine.CreateSnapshot(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	fmt.Printf("snapshot written to %s\n", cfg.DataDir)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	authenticator := auth.NewBcryptAuthenticator()
	if err := authenticator.AddUser(username, password); err != nil {
		return fmt.Errorf("registering user: %w", err)
	}
	if err := authenticator.Authenticate(username, password); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Printf("authenticated as %s\n", username)
	fmt.Println("the HTTP/Bolt request surface is out of scope for this core; nothing more to serve")
	return nil
}
