package query

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/models"
)

type recordedCall struct {
	endpoint string
	id       models.ConnectionID
	text     string
	format   models.ExportFormat
}

type fakeExecutor struct {
	calls   []recordedCall
	err     error
	payload *models.ExportPayload
}

func (f *fakeExecutor) ExecuteSQL(_ context.Context, id models.ConnectionID, sql string) (*models.QueryResult, error) {
	f.calls = append(f.calls, recordedCall{endpoint: "sql", id: id, text: sql})
	if f.err != nil {
		return nil, f.err
	}
	return &models.QueryResult{SQL: sql, Data: []models.Row{models.NewRow("n", 1)}}, nil
}

func (f *fakeExecutor) ExecuteNaturalLanguage(_ context.Context, id models.ConnectionID, q string) (*models.QueryResult, error) {
	f.calls = append(f.calls, recordedCall{endpoint: "natural-language", id: id, text: q})
	if f.err != nil {
		return nil, f.err
	}
	return &models.QueryResult{SQL: "SELECT count(*) FROM users"}, nil
}

func (f *fakeExecutor) Export(_ context.Context, id models.ConnectionID, sql string, format models.ExportFormat) (*models.ExportPayload, error) {
	f.calls = append(f.calls, recordedCall{endpoint: "export", id: id, text: sql, format: format})
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

type fixedActive struct {
	id models.ConnectionID
	ok bool
}

func (a fixedActive) Active() (models.ConnectionID, bool) { return a.id, a.ok }

type unknownRequest struct{ models.Literal }

func TestExecute_Routing(t *testing.T) {
	tests := []struct {
		name string
		req  models.QueryRequest
		want recordedCall
	}{
		{"literal goes to sql", models.Literal{SQL: "  select 1  "}, recordedCall{endpoint: "sql", id: "4", text: "  select 1  "}},
		{"question goes to natural-language", models.NaturalLanguage{Question: "how many users?"}, recordedCall{endpoint: "natural-language", id: "4", text: "how many users?"}},
		{"sql-looking question stays natural-language", models.NaturalLanguage{Question: "SELECT 1"}, recordedCall{endpoint: "natural-language", id: "4", text: "SELECT 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{}
			d := NewDispatcher(exec, nil, nil)
			_, err := d.Execute(context.Background(), "4", tt.req)
			require.NoError(t, err)
			assert.Equal(t, []recordedCall{tt.want}, exec.calls)
		})
	}
}

func TestExecute_UnknownVariantDoesNoIO(t *testing.T) {
	exec := &fakeExecutor{}
	d := NewDispatcher(exec, nil, nil)
	_, err := d.Execute(context.Background(), "1", unknownRequest{})
	require.Error(t, err)
	assert.Empty(t, exec.calls)
}

func TestExecute_PropagatesErrorUnmodified(t *testing.T) {
	want := apperrors.Server(http.StatusForbidden, "Only SELECT statements are allowed")
	d := NewDispatcher(&fakeExecutor{err: want}, nil, nil)
	_, err := d.Execute(context.Background(), "1", models.Literal{SQL: "DROP TABLE users"})
	assert.Same(t, want, err)
}

func TestExport_LowercasesFormat(t *testing.T) {
	exec := &fakeExecutor{payload: &models.ExportPayload{Format: models.ExportCSV, Bytes: []byte{}}}
	d := NewDispatcher(exec, nil, nil)

	p, err := d.Export(context.Background(), "2", "SELECT * FROM t WHERE false", "CSV")
	require.NoError(t, err)
	assert.Empty(t, p.Bytes)
	assert.Equal(t, models.ExportCSV, exec.calls[0].format)
}

func TestExecuteActive(t *testing.T) {
	exec := &fakeExecutor{}
	d := NewDispatcher(exec, fixedActive{id: "8", ok: true}, nil)
	_, err := d.ExecuteActive(context.Background(), models.Literal{SQL: "SELECT 1"})
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionID("8"), exec.calls[0].id)

	for _, d := range []*Dispatcher{NewDispatcher(exec, fixedActive{}, nil), NewDispatcher(exec, nil, nil)} {
		_, err = d.ExecuteActive(context.Background(), models.Literal{SQL: "SELECT 1"})
		assert.ErrorIs(t, err, ErrNoActiveConnection)
		_, err = d.ExportActive(context.Background(), "SELECT 1", models.ExportJSON)
		assert.ErrorIs(t, err, ErrNoActiveConnection)
	}
	assert.Len(t, exec.calls, 1)
}
