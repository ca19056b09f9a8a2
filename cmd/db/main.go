// Command db is the line REPL front end for the paged B+tree row store
// (§6). It opens (or creates) a single database file and reads statements
// from standard input until ".exit" or EOF.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/0gajun/db-tutorial/internal/config"
	"github.com/0gajun/db-tutorial/internal/repl"
	"github.com/0gajun/db-tutorial/internal/storage"
)

var logLevelFlag string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db <file>",
		Short: "A minimal persistent B+tree row store with a line REPL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
	cmd.Flags().StringVar(&logLevelFlag, "log-level", "",
		"log verbosity: trace, debug, info, warn, error (default: from config or info)")
	return cmd
}

func run(path string) error {
	cfg, err := config.Load(logLevelFlag)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	log := logrus.NewEntry(logger)

	table, err := storage.Open(path, log)
	if err != nil {
		return errors.Wrapf(err, "open database %q", path)
	}
	defer func() {
		if closeErr := table.Close(); closeErr != nil {
			log.WithError(closeErr).Error("error closing database")
		}
	}()

	r, err := repl.New(table, log)
	if err != nil {
		return errors.Wrap(err, "start repl")
	}
	return r.Run()
}
