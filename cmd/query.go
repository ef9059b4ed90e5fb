// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sqlpilot/cli/internal/logging"
	"sqlpilot/cli/internal/models"
	"sqlpilot/cli/internal/terminal"
)

var queryConnection string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run SQL or a natural-language question against a connection",
}

var querySQLCmd = &cobra.Command{
	Use:   "sql [statement]",
	Short: "Run a SQL statement verbatim",
	Long: `Run a SQL statement on the backend. The statement is taken from the
arguments, or from stdin when no arguments are given.`,
	Example: `  sqlpilot query sql "SELECT count(*) FROM users"
  cat report.sql | sqlpilot query sql -c 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := queryText(args)
		if err != nil {
			return err
		}
		return runQuery(cmd, models.Literal{SQL: text})
	},
}

var queryAskCmd = &cobra.Command{
	Use:     "ask <question>",
	Aliases: []string{"nl"},
	Short:   "Ask a question in plain language; the backend writes the SQL",
	Example: `  sqlpilot query ask "how many orders were placed last week?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := queryText(args)
		if err != nil {
			return err
		}
		return runQuery(cmd, models.NaturalLanguage{Question: text})
	},
}

func runQuery(cmd *cobra.Command, req models.QueryRequest) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.target(cmd.Context(), queryConnection); err != nil {
		return err
	}

	start := time.Now()
	res, err := withSpinner("running", func() (*models.QueryResult, error) {
		return s.wb.Queries.ExecuteActive(cmd.Context(), req)
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	s.logger.Info("query finished",
		zap.String("sql", logging.TruncateSQL(res.SQL)),
		zap.Int("rows", res.RowCount()),
		zap.Duration("elapsed", elapsed))
	renderResult(res, elapsed)
	return nil
}

// queryText joins args, falling back to stdin when it is not a terminal.
func queryText(args []string) (string, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" && !terminal.IsInteractive() {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(string(b))
	}
	if text == "" {
		return "", errors.New("nothing to run; pass the statement as an argument or on stdin")
	}
	return text, nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(querySQLCmd, queryAskCmd)
	queryCmd.PersistentFlags().StringVarP(&queryConnection, "connection", "c", "", "Connection id (default: first registered connection)")
}
