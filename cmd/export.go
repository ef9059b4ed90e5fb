package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sqlpilot/cli/internal/exportfile"
	"sqlpilot/cli/internal/models"
)

var (
	exportConnection string
	exportFormat     string
	exportOut        string
)

var exportCmd = &cobra.Command{
	Use:   "export [statement]",
	Short: "Export the result of a SQL statement as CSV or JSON",
	Long: `Export the result of a SQL statement. The file is written exactly as the
backend produced it, to --out or to the export directory under the name the
backend suggests.`,
	Example: `  sqlpilot export "SELECT * FROM users" --format csv
  sqlpilot export "SELECT * FROM orders" -f json -o orders.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sql, err := queryText(args)
		if err != nil {
			return err
		}
		format, err := models.ParseExportFormat(exportFormat)
		if err != nil {
			return err
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if _, err := s.target(cmd.Context(), exportConnection); err != nil {
			return err
		}
		p, err := withSpinner("exporting", func() (*models.ExportPayload, error) {
			return s.wb.Queries.ExportActive(cmd.Context(), sql, format)
		})
		if err != nil {
			return err
		}
		path, err := saveExport(s, p, exportOut)
		if err != nil {
			return err
		}
		pterm.Success.Printf("Exported %s to %s\n", plural(len(p.Bytes), "byte"), path)
		return nil
	},
}

// saveExport writes p to out when set, else into the export directory.
func saveExport(s *session, p *models.ExportPayload, out string) (string, error) {
	var (
		path string
		err  error
	)
	if out != "" {
		path, err = exportfile.WriteTo(out, p)
	} else {
		var dir string
		dir, err = s.exportDir()
		if err != nil {
			return "", err
		}
		path, err = exportfile.Write(dir, p)
	}
	if err != nil {
		return "", err
	}
	s.logger.Info("export written", zap.String("path", path), zap.String("format", string(p.Format)), zap.Int("bytes", len(p.Bytes)))
	return path, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportConnection, "connection", "c", "", "Connection id (default: first registered connection)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(models.ExportCSV), "Export format (csv or json)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: export directory, backend-suggested name)")
}
