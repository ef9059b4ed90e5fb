package cmd

import (
	"github.com/spf13/cobra"

	"sqlpilot/cli/internal/models"
)

var (
	schemaConnection string
	schemaAll        bool
	schemaRefresh    bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the tables and columns of a connection",
	Long: `Show the schema of the active connection. The first registered connection
is used unless --connection is given. --all loads every connection's schema
in parallel.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		ctx := cmd.Context()

		if schemaAll {
			conns, err := s.wb.Registry.List(ctx)
			if err != nil {
				return err
			}
			ids := make([]models.ConnectionID, 0, len(conns))
			for _, c := range conns {
				ids = append(ids, c.ID)
			}
			_, _ = withSpinner("loading schemas", func() (struct{}, error) {
				s.wb.Schemas.RefreshAll(ctx, ids)
				s.wb.Wait()
				return struct{}{}, nil
			})
			for _, c := range conns {
				sectionHeader(c.Name + " (" + c.ID.String() + ")")
				sch, ok := s.wb.Schemas.Get(c.ID)
				renderSchema(c.ID, sch, ok)
			}
			return nil
		}

		id, err := s.target(ctx, schemaConnection)
		if err != nil {
			return err
		}
		_, _ = withSpinner("loading schema", func() (struct{}, error) {
			s.wb.Wait()
			if schemaRefresh {
				s.wb.Schemas.Refresh(ctx, id)
			}
			return struct{}{}, nil
		})
		sch, ok := s.wb.Schemas.Get(id)
		renderSchema(id, sch, ok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaConnection, "connection", "c", "", "Connection id")
	schemaCmd.Flags().BoolVar(&schemaAll, "all", false, "Show the schema of every connection")
	schemaCmd.Flags().BoolVar(&schemaRefresh, "refresh", false, "Fetch the schema again after the selection load completes")
}
