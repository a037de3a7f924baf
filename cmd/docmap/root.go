package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"github.com/lindstrom-j/docmap/docstore"
	"github.com/lindstrom-j/docmap/docstore/dynamostore"
	"github.com/lindstrom-j/docmap/docstore/memstore"
	"github.com/lindstrom-j/docmap/docstore/sqlitestore"
)

// Global flag values.
var (
	flagConfigFile string
	flagBackend    string
	flagJSON       bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "docmap",
	Short: "docmap manages an event calendar stored as documents",
	Long: `docmap is an event calendar CLI backed by a schemaless document store.

Each event is one document holding its venue, tickets and session agenda
as subdocuments. Subdocuments are addressable by composite identifiers,
so a ticket or session can be referenced directly from the command line.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return loadConfig(flagConfigFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default: .docmap.yaml, here or in ~/.docmap/)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite, memory or dynamo (default: sqlite)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(venueCmd)
	rootCmd.AddCommand(ticketCmd)
	rootCmd.AddCommand(sessionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("docmap v0.1.0")
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configured storage backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()
		fmt.Println("docmap storage initialized")
		return nil
	},
}

// openStore builds the configured backend. The returned close function
// releases backend resources and is safe to defer unconditionally.
func openStore(ctx context.Context) (docstore.Store, func(), error) {
	backend := flagBackend
	if backend == "" {
		backend = cfg.GetString(cfgKeyBackend)
	}
	slog.Debug("opening storage backend", "backend", backend)

	switch backend {
	case "sqlite":
		path := cfg.GetString(cfgKeySQLitePath)
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store at %s: %w", path, err)
		}
		return store, func() { store.Close() }, nil

	case "memory":
		slog.Warn("memory backend selected; data is discarded on exit")
		return memstore.New(), func() {}, nil

	case "dynamo":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		store := dynamostore.New(client, dynamostore.Config{
			Table: cfg.GetString(cfgKeyDynamoTable),
		})
		return store, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q (expected sqlite, memory or dynamo)", backend)
}
