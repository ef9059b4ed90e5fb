package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/httperrors"
	"sqlpilot/cli/internal/models"
	"sqlpilot/cli/internal/transport"
)

type call struct {
	Method string
	Path   string
	Body   map[string]any
}

type recorder struct {
	mu       sync.Mutex
	calls    []call
	notified int
}

func (r *recorder) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]call, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recorder) Notified() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notified
}

func newBackend(t *testing.T, h func(w http.ResponseWriter, r *http.Request)) (API, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{Method: r.Method, Path: r.URL.Path}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			assert.NoError(t, json.Unmarshal(b, &c.Body))
		}
		rec.mu.Lock()
		rec.calls = append(rec.calls, c)
		rec.mu.Unlock()
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	tr := transport.New(srv.URL, transport.WithNotifier(httperrors.NotifierFunc(func(string, error) {
		rec.mu.Lock()
		rec.notified++
		rec.mu.Unlock()
	})))
	return New(tr), rec
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestExecute_RoutesByVariant(t *testing.T) {
	api, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []map[string]any{{"n": 1}}, "sql": "SELECT 1"})
	})
	ctx := context.Background()

	res, err := api.ExecuteSQL(ctx, "3", "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", res.SQL)

	_, err = api.ExecuteNaturalLanguage(ctx, "3", "count users")
	require.NoError(t, err)

	require.Len(t, rec.Calls(), 2)
	assert.Equal(t, call{Method: http.MethodPost, Path: PathQuerySQL, Body: map[string]any{"connection_id": float64(3), "sql": "SELECT 1"}}, rec.Calls()[0])
	assert.Equal(t, call{Method: http.MethodPost, Path: PathQueryNL, Body: map[string]any{"connection_id": float64(3), "question": "count users"}}, rec.Calls()[1])
}

func TestConnections_CRUDPaths(t *testing.T) {
	api, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/connections/":
			writeJSON(w, []map[string]any{{"id": 1, "name": "a", "db_type": "sqlite", "connection_url": "sqlite:///a.db"}})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, map[string]any{"id": 1, "name": "a", "db_type": "sqlite", "connection_url": "sqlite:///a.db"})
		}
	})
	ctx := context.Background()
	spec := models.ConnectionSpec{Name: "a", DBType: "sqlite", ConnectionURL: "sqlite:///a.db"}

	list, err := api.ListConnections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ConnectionID("1"), list[0].ID)

	_, err = api.CreateConnection(ctx, spec)
	require.NoError(t, err)
	_, err = api.GetConnection(ctx, "1")
	require.NoError(t, err)
	_, err = api.UpdateConnection(ctx, "1", spec)
	require.NoError(t, err)
	require.NoError(t, api.DeleteConnection(ctx, "1"))

	got := make([]string, 0, len(rec.Calls()))
	for _, c := range rec.Calls() {
		got = append(got, c.Method+" "+c.Path)
	}
	assert.Equal(t, []string{
		"GET /connections/",
		"POST /connections/",
		"GET /connections/1",
		"PUT /connections/1",
		"DELETE /connections/1",
	}, got)
	assert.Equal(t, "sqlite:///a.db", rec.Calls()[1].Body["connection_url"])
}

func TestGetSchema_IsSilent(t *testing.T) {
	api, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"detail": "Connection not found"})
	})

	_, err := api.GetSchema(context.Background(), "99")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.StatusOf(err))
	assert.Equal(t, "/connections/99/schema", rec.Calls()[0].Path)
	assert.Zero(t, rec.Notified())
}

func TestGetSchema_Decodes(t *testing.T) {
	api, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{
			"table_name": "users",
			"columns": []map[string]any{
				{"column_name": "id", "data_type": "INTEGER", "is_primary_key": true, "is_foreign_key": false},
				{"column_name": "email", "data_type": "TEXT", "is_primary_key": false, "is_foreign_key": false},
			},
		}})
	})

	s, err := api.GetSchema(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, s, 1)
	assert.Equal(t, "users", s[0].Name)
	assert.Equal(t, []models.Column{
		{Name: "id", DataType: "INTEGER", IsPrimaryKey: true},
		{Name: "email", DataType: "TEXT"},
	}, s[0].Columns)
}

func TestExport_EmptyCSVIsValidPayload(t *testing.T) {
	api, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=export.csv")
		w.WriteHeader(http.StatusOK)
	})

	p, err := api.Export(context.Background(), "1", "SELECT * FROM users WHERE false", models.ExportCSV)
	require.NoError(t, err)
	require.NotNil(t, p.Bytes)
	assert.Empty(t, p.Bytes)
	assert.Equal(t, "export.csv", p.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", p.ContentType)
	assert.Equal(t, map[string]any{"connection_id": float64(1), "sql": "SELECT * FROM users WHERE false", "format": "csv"}, rec.Calls()[0].Body)
	assert.Zero(t, rec.Notified())
}

func TestExport_JSONBodyStaysRaw(t *testing.T) {
	body := "[\n  {\n    \"id\": 1\n  }\n]"
	api, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	p, err := api.Export(context.Background(), "1", "SELECT id FROM t", models.ExportJSON)
	require.NoError(t, err)
	assert.Equal(t, body, string(p.Bytes))
	assert.Equal(t, "export.json", p.Filename)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "report.csv", exportFilename(`attachment; filename="report.csv"`, models.ExportCSV))
	assert.Equal(t, "passwd", exportFilename(`attachment; filename="../../etc/passwd"`, models.ExportCSV))
	assert.Equal(t, "export.json", exportFilename("", models.ExportJSON))
	assert.Equal(t, "export.csv", exportFilename("attachment", models.ExportCSV))
}
