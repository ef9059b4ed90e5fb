package exportfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlpilot/cli/internal/models"
)

func TestWrite_BytesUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		payload  models.ExportPayload
		wantFile string
	}{
		{
			name:     "csv with binary-ish bytes",
			payload:  models.ExportPayload{Format: models.ExportCSV, Filename: "export.csv", Bytes: []byte("id,name\r\n1,\xff\xfe\r\n")},
			wantFile: "export.csv",
		},
		{
			name:     "empty csv",
			payload:  models.ExportPayload{Format: models.ExportCSV, Filename: "export.csv", Bytes: []byte{}},
			wantFile: "export.csv",
		},
		{
			name:     "json without filename",
			payload:  models.ExportPayload{Format: models.ExportJSON, Bytes: []byte("[\n  {\"id\": 1}\n]")},
			wantFile: "export.json",
		},
		{
			name:     "filename is confined to dir",
			payload:  models.ExportPayload{Format: models.ExportCSV, Filename: "../../escape.csv", Bytes: []byte("a\n")},
			wantFile: "escape.csv",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "exports")
			path, err := Write(dir, &tt.payload)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.wantFile), path)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.payload.Bytes, got)
		})
	}
}

func TestWriteTo_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0o644))

	_, err := WriteTo(path, &models.ExportPayload{Format: models.ExportCSV, Bytes: []byte("new")})
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestWrite_NilPayload(t *testing.T) {
	_, err := Write(t.TempDir(), nil)
	assert.Error(t, err)
}
