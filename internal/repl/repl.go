// Package repl implements the line-oriented front end described in §6: a
// prompt that dispatches each line to either a meta-command or a
// statement, against a single open table.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/0gajun/db-tutorial/internal/storage"
)

// REPL reads lines from an interactive readline session and executes them
// against a single table until ".exit", EOF, or a fatal storage error.
type REPL struct {
	table *storage.Table
	rl    *readline.Instance
	out   io.Writer
	log   *logrus.Entry
}

// New builds a REPL over table. Line history is kept in a per-user file
// when a home directory is available, and silently skipped otherwise.
func New(table *storage.Table, log *logrus.Entry) (*REPL, error) {
	cfg := &readline.Config{
		Prompt:          "db > ",
		InterruptPrompt: "^C",
		EOFPrompt:       ".exit",
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, ".db_history")
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "start readline")
	}

	return &REPL{
		table: table,
		rl:    rl,
		out:   rl.Stdout(),
		log:   log.WithField("component", "repl"),
	}, nil
}

// Run is the REPL's main loop. It returns nil on a clean ".exit" or EOF,
// and a non-nil error only for conditions the engine cannot recover from.
func (r *REPL) Run() error {
	defer r.rl.Close()

	for {
		line, err := r.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || err == io.EOF {
			// Ctrl-C and Ctrl-D both take the same exit path as ".exit".
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read line")
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if IsMetaCommand(input) {
			done, err := r.runMetaCommand(input)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			continue
		}

		if err := r.runStatement(input); err != nil {
			return err
		}
	}
}

func (r *REPL) runMetaCommand(input string) (done bool, fatal error) {
	result, err := ExecuteMetaCommand(r.out, input, r.table)
	if err != nil {
		if errors.Is(err, ErrUnrecognizedCommand) {
			reportUnrecognizedCommand(r.out, input)
			return false, nil
		}
		return false, errors.Wrap(err, "meta command")
	}
	return result == MetaCommandExit, nil
}

// reportUnrecognizedCommand prints the message text from
// original_source/db.c for an unrecognized "." command.
func reportUnrecognizedCommand(w io.Writer, input string) {
	fmt.Fprintf(w, "Unrecognized command: '%s'.\n", input)
}

func (r *REPL) runStatement(input string) error {
	stmt, err := PrepareStatement(input)
	if err != nil {
		reportPrepareError(r.out, input, err)
		return nil
	}

	if err := ExecuteStatement(r.out, stmt, r.table); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			fmt.Fprintln(r.out, "Error: Duplicate key.")
			return nil
		}
		r.log.WithError(err).Error("statement execution failed")
		return errors.Wrap(err, "execute statement")
	}

	fmt.Fprintln(r.out, "Executed.")
	return nil
}

// reportPrepareError prints the input-error messages from original_source/db.c,
// which echo the failing input text.
func reportPrepareError(w io.Writer, input string, err error) {
	switch {
	case errors.Is(err, ErrSyntaxError):
		fmt.Fprintf(w, "Syntax error. Could not parse statement '%s'.\n", input)
	case errors.Is(err, ErrNegativeID):
		fmt.Fprintln(w, "ID must be positive.")
	case errors.Is(err, ErrStringTooLong):
		fmt.Fprintln(w, "String is too long.")
	case errors.Is(err, ErrUnrecognizedStatement):
		fmt.Fprintf(w, "Unrecognized statement: '%s'.\n", input)
	default:
		fmt.Fprintln(w, err.Error())
	}
}

// ExecuteStatement runs a prepared statement, writing any row output to w.
func ExecuteStatement(w io.Writer, stmt *Statement, table *storage.Table) error {
	switch stmt.Type {
	case StatementInsert:
		return table.Insert(stmt.RowToInsert)
	case StatementSelect:
		return selectAll(w, table)
	default:
		return errors.Errorf("unknown statement type %v", stmt.Type)
	}
}

func selectAll(w io.Writer, table *storage.Table) error {
	cursor, err := table.Start()
	if err != nil {
		return err
	}
	for !cursor.EndOfTable() {
		raw, err := cursor.Value()
		if err != nil {
			return err
		}
		row, err := storage.DeserializeRow(raw)
		if err != nil {
			return err
		}
		printRow(w, row)
		if err := cursor.Advance(); err != nil {
			return err
		}
	}
	return nil
}
