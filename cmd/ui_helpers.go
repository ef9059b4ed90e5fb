package cmd

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"sqlpilot/cli/internal/models"
)

var spinnerFrames = []string{"-", "\\", "|", "/"}

// startSpinner hides the cursor and animates text in a pterm area until the
// returned stop function is called. Verbose runs skip the animation so it
// does not interleave with log lines.
func startSpinner(text string) func() {
	if verbose {
		return func() {}
	}
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func() {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		i := 0
		for {
			select {
			case <-t.C:
				area.Update(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text))
				i++
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			_ = area.Stop()
			cursor.Show()
		})
	}
}

// withSpinner runs fn while a spinner shows text.
func withSpinner[T any](text string, fn func() (T, error)) (T, error) {
	stop := startSpinner(text)
	defer stop()
	return fn()
}

func renderConnections(conns []models.Connection, active models.ConnectionID) {
	if len(conns) == 0 {
		pterm.Info.Println("No connections registered. Create one with: sqlpilot connections create")
		return
	}
	data := pterm.TableData{{"", "ID", "Name", "Type", "Created"}}
	for _, c := range conns {
		marker := ""
		if c.ID == active {
			marker = "*"
		}
		created := ""
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		data = append(data, []string{marker, c.ID.String(), c.Name, c.DBType, created})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderConnection(c models.Connection) {
	body := fmt.Sprintf("ID:   %s\nType: %s\nURL:  %s", c.ID, c.DBType, maskURL(c.ConnectionURL))
	if !c.CreatedAt.IsZero() {
		body += "\nCreated: " + c.CreatedAt.Local().Format(time.RFC1123)
	}
	pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(c.Name)).
		WithPadding(1).
		Println(body)
}

func renderSchema(id models.ConnectionID, s models.Schema, fetched bool) {
	switch {
	case !fetched:
		pterm.Warning.Printf("Schema for connection %s has not been loaded yet\n", id)
		return
	case len(s) == 0:
		pterm.Info.Printf("No tables found for connection %s (or the schema could not be loaded)\n", id)
		return
	}
	for _, t := range s {
		title := pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(t.Name)
		if t.Description != "" {
			title += pterm.NewStyle(pterm.FgGray).Sprint("  " + t.Description)
		}
		pterm.Println(title)
		data := pterm.TableData{{"Column", "Type", "Key"}}
		for _, c := range t.Columns {
			key := ""
			switch {
			case c.IsPrimaryKey && c.IsForeignKey:
				key = "PK, FK"
			case c.IsPrimaryKey:
				key = "PK"
			case c.IsForeignKey:
				key = "FK"
			}
			data = append(data, []string{c.Name, c.DataType, key})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		pterm.Println()
	}
	pterm.Info.Printf("%d tables, %d columns\n", len(s), s.ColumnCount())
}

func renderResult(res *models.QueryResult, elapsed time.Duration) {
	if res.SQL != "" {
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint(res.SQL))
	}
	if res.Error != "" {
		pterm.Error.Println(res.Error)
		return
	}
	cols := res.Columns()
	if len(cols) == 0 {
		pterm.Info.Printf("No rows (%s)\n", elapsed.Round(time.Millisecond))
		return
	}
	data := pterm.TableData{cols}
	for _, row := range res.Data {
		data = append(data, row.Strings(cols))
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Info.Printf("%s (%s)\n", plural(res.RowCount(), "row"), elapsed.Round(time.Millisecond))
	if res.SuggestedExportFormat != "" {
		pterm.Info.Printf("Tip: export this result with --format %s\n", res.SuggestedExportFormat)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func sectionHeader(title string) {
	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.FgLightMagenta, pterm.Bold).Sprint("== " + title))
}
