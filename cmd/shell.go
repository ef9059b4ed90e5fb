// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sqlpilot/cli/internal/logging"
	"sqlpilot/cli/internal/mode"
	"sqlpilot/cli/internal/models"
	"sqlpilot/cli/internal/xdg"
)

const historyFileName = "history"

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long: `Start an interactive session against the backend.

In IDE mode a line is sent as SQL; statements may span lines and end with a
semicolon. In simple mode each line is a question in plain language.
Type \h for the list of commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		history := ""
		if p, err := xdg.DataFile(historyFileName); err == nil {
			history = p
		}
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          promptFor(s.wb.Mode.Current()),
			HistoryFile:     history,
			AutoComplete:    shellCompleter(),
			InterruptPrompt: "^C",
			EOFPrompt:       `\q`,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize shell: %w", err)
		}
		defer func() { _ = rl.Close() }()

		sh := &shell{s: s, rl: rl}
		return sh.run(cmd.Context())
	},
}

type shell struct {
	s   *session
	rl  *readline.Instance
	buf strings.Builder
}

func promptFor(m mode.Mode) string {
	if m == mode.Simple {
		return "sqlpilot(ask)> "
	}
	return "sqlpilot(sql)> "
}

func (sh *shell) resetPrompt() {
	sh.rl.SetPrompt(promptFor(sh.s.wb.Mode.Current()))
}

func (sh *shell) run(ctx context.Context) error {
	pterm.DefaultBasicText.Println("SQLPilot shell. Type " + pterm.Cyan(`\h`) + " for help, " + pterm.Cyan(`\q`) + " to quit.")
	if _, err := sh.s.wb.Registry.List(ctx); err == nil {
		if id, ok := sh.s.wb.Selector.Active(); ok {
			pterm.Info.Printf("Active connection: %s\n", sh.describe(id))
		}
	}

	for {
		line, err := sh.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sh.buf.Reset()
			sh.resetPrompt()
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sh.buf.Len() == 0 && strings.HasPrefix(line, `\`) {
			if quit := sh.command(ctx, line); quit {
				return nil
			}
			continue
		}

		if sh.s.wb.Mode.IsIDE() {
			sh.buf.WriteString(line)
			if !strings.HasSuffix(line, ";") {
				sh.buf.WriteString("\n")
				sh.rl.SetPrompt("          ...> ")
				continue
			}
			text := strings.TrimSuffix(sh.buf.String(), ";")
			sh.buf.Reset()
			sh.resetPrompt()
			sh.execute(ctx, models.Literal{SQL: text})
			continue
		}
		sh.execute(ctx, models.NaturalLanguage{Question: line})
	}
}

// command handles a backslash command and reports whether the shell should exit.
func (sh *shell) command(ctx context.Context, line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	wb := sh.s.wb

	switch name {
	case `\q`, `\quit`:
		return true
	case `\h`, `\?`, `\help`:
		printShellHelp()
	case `\l`:
		conns, err := wb.Registry.List(ctx)
		if err != nil {
			return false
		}
		active, _ := wb.Selector.Active()
		renderConnections(conns, active)
	case `\c`:
		if rest == "" {
			pterm.Warning.Println(`Usage: \c <connection id>`)
			return false
		}
		id := models.ConnectionID(rest)
		wb.Selector.Select(id)
		pterm.Info.Printf("Active connection: %s\n", sh.describe(id))
	case `\d`:
		id, ok := wb.Selector.Active()
		if !ok {
			pterm.Warning.Println(`No active connection; select one with \c <id>`)
			return false
		}
		_, _ = withSpinner("loading schema", func() (struct{}, error) {
			wb.Wait()
			return struct{}{}, nil
		})
		s, fetched := wb.Schemas.Get(id)
		if table := rest; table != "" {
			t, found := s.Table(table)
			if !found {
				pterm.Warning.Printf("No table %q in connection %s\n", table, id)
				return false
			}
			renderSchema(id, models.Schema{t}, true)
			return false
		}
		renderSchema(id, s, fetched)
	case `\r`:
		id, ok := wb.Selector.Active()
		if !ok {
			pterm.Warning.Println(`No active connection; select one with \c <id>`)
			return false
		}
		_, _ = withSpinner("refreshing schema", func() (struct{}, error) {
			wb.Schemas.Refresh(ctx, id)
			return struct{}{}, nil
		})
		s, _ := wb.Schemas.Get(id)
		pterm.Success.Printf("Schema refreshed: %s\n", plural(len(s), "table"))
	case `\m`:
		m := wb.Mode.Toggle()
		sh.buf.Reset()
		sh.resetPrompt()
		pterm.Info.Printf("Switched to %s mode\n", m)
	case `\e`:
		format, sql, _ := strings.Cut(rest, " ")
		sql = strings.TrimSuffix(strings.TrimSpace(sql), ";")
		if format == "" || sql == "" {
			pterm.Warning.Println(`Usage: \e <csv|json> <sql>`)
			return false
		}
		sh.export(ctx, format, sql)
	default:
		pterm.Warning.Printf("Unknown command %s (type \\h for help)\n", name)
	}
	return false
}

func (sh *shell) execute(ctx context.Context, req models.QueryRequest) {
	start := time.Now()
	res, err := withSpinner("running", func() (*models.QueryResult, error) {
		return sh.s.wb.Queries.ExecuteActive(ctx, req)
	})
	if err != nil {
		sh.report("Query failed", err)
		return
	}
	sh.s.logger.Debug("shell query", zap.String("sql", logging.TruncateSQL(res.SQL)), zap.Int("rows", res.RowCount()))
	renderResult(res, time.Since(start))
}

func (sh *shell) export(ctx context.Context, format, sql string) {
	f, err := models.ParseExportFormat(format)
	if err != nil {
		sh.report("Export failed", err)
		return
	}
	p, err := withSpinner("exporting", func() (*models.ExportPayload, error) {
		return sh.s.wb.Queries.ExportActive(ctx, sql, f)
	})
	if err != nil {
		sh.report("Export failed", err)
		return
	}
	path, err := saveExport(sh.s, p, "")
	if err != nil {
		sh.report("Export failed", err)
		return
	}
	pterm.Success.Printf("Exported to %s\n", path)
}

// report prints errors the transport notifier did not already show.
func (sh *shell) report(action string, err error) {
	if isTransportError(err) {
		return
	}
	pterm.Error.Println(logging.PresentError(action, err))
}

func (sh *shell) describe(id models.ConnectionID) string {
	if c, ok := sh.s.wb.Registry.Lookup(id); ok {
		return fmt.Sprintf("%s (%s, %s)", c.Name, id, c.DBType)
	}
	return id.String()
}

func shellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(`\l`),
		readline.PcItem(`\c`),
		readline.PcItem(`\d`),
		readline.PcItem(`\r`),
		readline.PcItem(`\m`),
		readline.PcItem(`\e`, readline.PcItem("csv"), readline.PcItem("json")),
		readline.PcItem(`\h`),
		readline.PcItem(`\q`),
	)
}

func printShellHelp() {
	pterm.DefaultBasicText.Println(`
Commands:
  \l                 List connections (* marks the active one)
  \c <id>            Make a connection active and load its schema
  \d [table]         Show the active connection's schema
  \r                 Reload the active connection's schema
  \m                 Switch between SQL (IDE) and question (simple) mode
  \e <csv|json> SQL  Export the result of SQL to the export directory
  \h                 Show this help
  \q                 Quit

In SQL mode end statements with a semicolon. Ctrl-C clears the current input.`)
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
