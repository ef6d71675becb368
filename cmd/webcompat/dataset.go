package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"webcompat/internal/compatdb"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage the capability database",
	Long: `The capability database maps API surfaces to their minimum supported
versions per runtime. A snapshot ships embedded in the binary; 'dataset
update' refreshes the configured store from the published artifact, and
'dataset import' loads a local JSON artifact instead.`,
}

var datasetUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch the latest dataset into the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := compatdb.NewClient(viper.GetString("dataset.url"))
		fmt.Fprintf(cmd.ErrOrStderr(), "Fetching dataset from %s...\n", client.URL)

		ds, err := client.Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch dataset: %w", err)
		}
		return saveDataset(cmd, ds)
	},
}

var datasetImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a dataset JSON artifact into the local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := compatdb.LoadFile(args[0])
		if err != nil {
			return err
		}
		return saveDataset(cmd, ds)
	},
}

var datasetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the dataset version and record count in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, closeSource, err := loadSource("")
		if err != nil {
			return err
		}
		defer closeSource()

		version, err := source.Version()
		if err != nil {
			return err
		}
		records, err := source.All()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Version:\t%s\n", version)
		fmt.Fprintf(w, "Capabilities:\t%d\n", len(records))
		fmt.Fprintf(w, "Store:\t%s\n", sourceDescription())
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetUpdateCmd)
	datasetCmd.AddCommand(datasetImportCmd)
	datasetCmd.AddCommand(datasetStatusCmd)
}

func saveDataset(cmd *cobra.Command, ds *compatdb.Dataset) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Replace(ds); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded dataset %s (%d capabilities) into %s\n",
		ds.Version, len(ds.Capabilities), sourceDescription())
	return nil
}

// openStore opens the configured dataset store for writing.
func openStore() (compatdb.Store, error) {
	return compatdb.NewStore(storeConfig())
}

func storeConfig() compatdb.StoreConfig {
	cfg := compatdb.StoreConfig{Type: viper.GetString("dataset.store")}
	switch cfg.Type {
	case "postgres", "postgresql":
		cfg.ConnectionString = viper.GetString("dataset.dsn")
	default:
		cfg.ConnectionString = viper.GetString("dataset.path")
	}
	return cfg
}

func sqlitePath() string {
	if p := viper.GetString("dataset.path"); p != "" {
		return p
	}
	return compatdb.DefaultSQLitePath
}

func sourceDescription() string {
	switch viper.GetString("dataset.store") {
	case "postgres", "postgresql":
		return "postgres store"
	default:
		return fmt.Sprintf("sqlite store (%s)", sqlitePath())
	}
}

// loadSource resolves the capability database for a run: an explicit
// artifact file wins, then a populated configured store, then the embedded
// snapshot. A database that cannot be loaded is fatal: the run cannot
// produce meaningful results without it.
func loadSource(artifact string) (compatdb.Source, func(), error) {
	noop := func() {}

	if artifact != "" {
		ds, err := compatdb.LoadFile(artifact)
		if err != nil {
			return nil, nil, err
		}
		return compatdb.NewStaticSource(ds), noop, nil
	}

	storeType := viper.GetString("dataset.store")
	if storeType == "postgres" || storeType == "postgresql" {
		store, err := openStore()
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}

	// SQLite: only consult a cache that exists; otherwise the embedded
	// snapshot serves so a fresh checkout works offline.
	if _, err := os.Stat(sqlitePath()); err == nil {
		store, err := openStore()
		if err != nil {
			return nil, nil, err
		}
		version, err := store.Version()
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		if version != "" {
			return store, func() { store.Close() }, nil
		}
		store.Close()
	}

	embedded, err := compatdb.Embedded()
	if err != nil {
		return nil, nil, err
	}
	return embedded, noop, nil
}
