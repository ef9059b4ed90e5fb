package workbench

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlpilot/cli/internal/config"
	"sqlpilot/cli/internal/httperrors"
	"sqlpilot/cli/internal/mode"
	"sqlpilot/cli/internal/models"
)

type fakeServer struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && path == "/connections/":
		_, _ = w.Write([]byte(`[{"id":1,"name":"local","db_type":"sqlite","connection_url":"sqlite:///a.db","created_at":"2025-01-02T03:04:05"},{"id":2,"name":"other","db_type":"sqlite","connection_url":"sqlite:///b.db"}]`))
	case r.Method == http.MethodGet && path == "/connections/1/schema":
		_, _ = w.Write([]byte(`[{"table_name":"users","columns":[{"column_name":"id","data_type":"INTEGER","is_primary_key":true,"is_foreign_key":false}]}]`))
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/schema"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Connection not found"}`))
	case r.Method == http.MethodPost && path == "/query/sql":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"id": 1}}, "sql": body["sql"]})
	case r.Method == http.MethodPost && path == "/query/export":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=export.csv")
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
	}
}

func newWorkbench(t *testing.T) (*Workbench, *fakeServer, *int) {
	t.Helper()
	fake := &fakeServer{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	var mu sync.Mutex
	notified := 0
	wb, err := New(config.Config{APIURL: srv.URL + "/api/v1", Timeout: 2 * time.Second, Mode: "ide"},
		WithNotifier(httperrors.NotifierFunc(func(string, error) {
			mu.Lock()
			notified++
			mu.Unlock()
		})))
	require.NoError(t, err)
	t.Cleanup(wb.Close)
	return wb, fake, &notified
}

func TestWorkbench_BootstrapSelectsAndLoadsSchema(t *testing.T) {
	wb, _, notified := newWorkbench(t)
	ctx := context.Background()

	conns, err := wb.Registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 2)

	active, ok := wb.Selector.Active()
	require.True(t, ok)
	assert.Equal(t, models.ConnectionID("1"), active)

	wb.Wait()
	s, ok := wb.Schemas.Get("1")
	require.True(t, ok)
	require.Len(t, s, 1)
	assert.Equal(t, "users", s[0].Name)
	assert.Zero(t, *notified)
}

func TestWorkbench_DanglingSelectionDegradesToEmptySchema(t *testing.T) {
	wb, _, notified := newWorkbench(t)

	wb.Selector.Select("42")
	wb.Wait()

	s, ok := wb.Schemas.Get("42")
	require.True(t, ok)
	assert.Empty(t, s)
	assert.Zero(t, *notified)
}

func TestWorkbench_QueryAndExportAgainstActive(t *testing.T) {
	wb, fake, _ := newWorkbench(t)
	ctx := context.Background()
	_, err := wb.Registry.List(ctx)
	require.NoError(t, err)

	res, err := wb.Queries.ExecuteActive(ctx, models.Literal{SQL: "SELECT id FROM users"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users", res.SQL)
	assert.Equal(t, []string{"id"}, res.Columns())

	p, err := wb.Queries.ExportActive(ctx, "SELECT id FROM users WHERE false", models.ExportCSV)
	require.NoError(t, err)
	assert.Empty(t, p.Bytes)
	assert.Equal(t, "export.csv", p.Filename)

	wb.Wait()
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.requests, "POST /api/v1/query/sql")
	assert.Contains(t, fake.requests, "POST /api/v1/query/export")
}

func TestWorkbench_ServerErrorIsNotified(t *testing.T) {
	wb, _, notified := newWorkbench(t)
	_, err := wb.Registry.Get(context.Background(), "99")
	require.Error(t, err)
	assert.Equal(t, 1, *notified)
}

func TestNew_InitialMode(t *testing.T) {
	wb, err := New(config.Config{APIURL: "http://localhost:1/api/v1", Timeout: time.Second, Mode: "simple"})
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, mode.Simple, wb.Mode.Current())

	_, err = New(config.Config{APIURL: "http://localhost:1/api/v1", Mode: "expert"})
	assert.Error(t, err)
}
