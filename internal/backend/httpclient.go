package backend

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"path"

	"sqlpilot/cli/internal/models"
	"sqlpilot/cli/internal/transport"
)

// Endpoint paths relative to the API base URL.
const (
	PathConnections = "/connections/"
	PathQuerySQL    = "/query/sql"
	PathQueryNL     = "/query/natural-language"
	PathQueryExport = "/query/export"
)

// Doer is the subset of the transport the HTTP client needs.
type Doer interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// HTTP implements API over REST endpoints.
type HTTP struct {
	t Doer
}

// newHTTP creates an HTTP API client on top of a transport.
func newHTTP(t Doer) *HTTP {
	return &HTTP{t: t}
}

func connectionPath(id models.ConnectionID) string {
	return "/connections/" + url.PathEscape(id.String())
}

// ListConnections calls GET /connections/.
func (h *HTTP) ListConnections(ctx context.Context) ([]models.Connection, error) {
	var out []models.Connection
	_, err := h.t.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   PathConnections,
		Into:   &out,
		Action: "listing connections",
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateConnection calls POST /connections/ and returns the server-assigned connection.
func (h *HTTP) CreateConnection(ctx context.Context, spec models.ConnectionSpec) (models.Connection, error) {
	var out models.Connection
	_, err := h.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   PathConnections,
		Body:   spec,
		Into:   &out,
		Action: "creating connection " + spec.Name,
	})
	return out, err
}

// GetConnection calls GET /connections/{id}.
func (h *HTTP) GetConnection(ctx context.Context, id models.ConnectionID) (models.Connection, error) {
	var out models.Connection
	_, err := h.t.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   connectionPath(id),
		Into:   &out,
		Action: "loading connection " + id.String(),
	})
	return out, err
}

// UpdateConnection calls PUT /connections/{id}.
func (h *HTTP) UpdateConnection(ctx context.Context, id models.ConnectionID, spec models.ConnectionSpec) (models.Connection, error) {
	var out models.Connection
	_, err := h.t.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   connectionPath(id),
		Body:   spec,
		Into:   &out,
		Action: "updating connection " + id.String(),
	})
	return out, err
}

// DeleteConnection calls DELETE /connections/{id}. Any 2xx body is ignored.
func (h *HTTP) DeleteConnection(ctx context.Context, id models.ConnectionID) error {
	_, err := h.t.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   connectionPath(id),
		Action: "deleting connection " + id.String(),
	})
	return err
}

// GetSchema calls GET /connections/{id}/schema as a silent request.
func (h *HTTP) GetSchema(ctx context.Context, id models.ConnectionID) (models.Schema, error) {
	var out models.Schema
	_, err := h.t.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   connectionPath(id) + "/schema",
		Into:   &out,
		Silent: true,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = models.Schema{}
	}
	return out, nil
}

// ExecuteSQL calls POST /query/sql with the statement verbatim.
func (h *HTTP) ExecuteSQL(ctx context.Context, id models.ConnectionID, sql string) (*models.QueryResult, error) {
	var out models.QueryResult
	_, err := h.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   PathQuerySQL,
		Body:   models.SQLQueryBody{ConnectionID: id, SQL: sql},
		Into:   &out,
		Action: "running query",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteNaturalLanguage calls POST /query/natural-language.
func (h *HTTP) ExecuteNaturalLanguage(ctx context.Context, id models.ConnectionID, question string) (*models.QueryResult, error) {
	var out models.QueryResult
	_, err := h.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   PathQueryNL,
		Body:   models.NLQueryBody{ConnectionID: id, Question: question},
		Into:   &out,
		Action: "answering question",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Export calls POST /query/export expecting raw bytes.
func (h *HTTP) Export(ctx context.Context, id models.ConnectionID, sql string, format models.ExportFormat) (*models.ExportPayload, error) {
	resp, err := h.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   PathQueryExport,
		Body:   models.ExportBody{ConnectionID: id, SQL: sql, Format: format},
		Expect: transport.RawBytes,
		Action: "exporting " + string(format),
	})
	if err != nil {
		return nil, err
	}
	return &models.ExportPayload{
		Format:      format,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    exportFilename(resp.Header.Get("Content-Disposition"), format),
		Bytes:       resp.Raw,
	}, nil
}

// exportFilename takes the filename from Content-Disposition, falling back to export.<format>.
// Only the base name is kept.
func exportFilename(disposition string, format models.ExportFormat) string {
	fallback := "export" + format.Extension()
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	name := path.Base(params["filename"])
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}
