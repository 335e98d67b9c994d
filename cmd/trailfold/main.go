// Command trailfold builds, inspects and folds over trail databases.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kezhuw/traildb"
)

// app holds the state shared by subcommands of one invocation.
type app struct {
	configFile string
	config     *viper.Viper
	logger     traildb.Logger
	stderr     io.Writer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd creates the top-level "trailfold" command with global flags
// and all subcommands registered.
func newRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}
	root := &cobra.Command{
		Use:   "trailfold",
		Short: "Build and query trail databases",
		Long: `Trailfold builds immutable trail databases from JSONL files, SQLite tables or
PostgreSQL tables, and folds over their trails, optionally restricted by an
event filter.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./trailfold.yaml or ~/.config/trailfold/trailfold.yaml)")
	root.PersistentFlags().String("log-level", defaultLogLevel, "minimum level of log messages: debug, info, warn or error")
	root.PersistentFlags().Bool("verify-checksums", false, "verify block checksums when reading databases")

	root.AddCommand(newMakeCmd(a))
	root.AddCommand(newInfoCmd(a))
	root.AddCommand(newDumpCmd(a))
	root.AddCommand(newCountCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command, args []string) error {
	v, err := loadConfig(a.configFile)
	if err != nil {
		return err
	}
	if err := v.BindPFlag(cfgKeyLogLevel, cmd.Flags().Lookup("log-level")); err != nil {
		return err
	}
	if err := v.BindPFlag(cfgKeyVerifyChecksums, cmd.Flags().Lookup("verify-checksums")); err != nil {
		return err
	}
	level, err := traildb.ParseLogLevel(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return err
	}
	a.config = v
	a.logger = traildb.NewLogger(a.stderr, level)
	return nil
}

func (a *app) openDB(name string) (*traildb.DB, error) {
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	db, err := traildb.Open(name, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return db, nil
}

func (a *app) filter(db *traildb.DB, cmd *cobra.Command) (*traildb.EventFilter, error) {
	q, err := cmd.Flags().GetString("filter")
	if err != nil || q == "" {
		return nil, err
	}
	f, err := traildb.ParseFilter(db, q)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", q, err)
	}
	a.logger.Debugf("filter %q parsed as %s", q, f)
	return f, nil
}
