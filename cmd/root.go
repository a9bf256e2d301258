package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"db-bridge/internal/backend"
)

var (
	cfgFile    string
	sourceSpec string
	destSpec   string
)

var RootCmd = &cobra.Command{
	Use:   "db-bridge",
	Short: "Schema introspection and bulk data transfer across DBMSes",
	Long: `db-bridge normalizes schema metadata across MySQL, SQLite,
PostgreSQL, SQL Server and Oracle, and bulk-loads records between them
through batched multi-row INSERT statements.

Connections are given as colon-separated parameter strings, e.g.

  mysql:host=localhost:port=3306:user=x:password=:database=shop
  sqlite:filename=shop.db:write=y

An empty password value triggers an interactive masked prompt.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db-bridge.yaml)")
	RootCmd.PersistentFlags().StringVar(&sourceSpec, "source", "", "source connection (backend:key=value:…)")
	RootCmd.PersistentFlags().StringVar(&destSpec, "dest", "", "destination connection (backend:key=value:…)")

	viper.BindPFlag("connections.source", RootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("connections.dest", RootCmd.PersistentFlags().Lookup("dest"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("db-bridge")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// connectionSpec resolves a connection parameter string from flag or
// config (flag wins), erroring out when neither is set.
func connectionSpec(key, doingWhat string) (string, error) {
	spec := viper.GetString("connections." + key)
	if spec == "" {
		return "", fmt.Errorf("need a %s connection %s (--%s flag or connections.%s in config)",
			key, doingWhat, key, key)
	}
	return spec, nil
}

// openBackend parses a connection parameter string, resolves an empty
// password through the masked prompt, and connects.
func openBackend(spec string) (backend.Backend, string, error) {
	name, params, err := backend.ParseSpec(spec)
	if err != nil {
		return nil, "", err
	}
	if err := resolvePassword(name, params); err != nil {
		return nil, "", err
	}
	driver, err := backend.Lookup(name)
	if err != nil {
		return nil, "", err
	}
	be, err := driver.Open(params)
	if err != nil {
		return nil, "", err
	}
	return be, name, nil
}
