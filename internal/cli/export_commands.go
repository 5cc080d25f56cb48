package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/dialogs"
	"github.com/rehber360/rehber360-desktop/internal/export"
	"github.com/rehber360/rehber360-desktop/internal/pathutil"
)

// newExportCmd creates the 'export' command group.
func newExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export API results to Excel or PDF",
		Long: `Fetch a list endpoint and write it as a table.

Examples:
  rehber360 export excel --endpoint /api/students --title "Öğrenci Listesi"
  rehber360 export pdf --endpoint /api/students --columns name,surname,class -o ogrenciler.pdf`,
	}

	exportCmd.AddCommand(newExportFormatCmd(export.FormatExcel, "excel", "Write an .xlsx workbook"))
	exportCmd.AddCommand(newExportFormatCmd(export.FormatPDF, "pdf", "Write a PDF report"))
	return exportCmd
}

func newExportFormatCmd(format, use, short string) *cobra.Command {
	var endpoint, title, columns, output string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			req := export.Request{Endpoint: endpoint, Title: title, Format: format}
			if columns != "" {
				for _, c := range strings.Split(columns, ",") {
					if c = strings.TrimSpace(c); c != "" {
						req.Columns = append(req.Columns, c)
					}
				}
			}

			now := time.Now()
			table, err := export.Fetch(GetContext(), engine.Transport(), req)
			if err != nil {
				return err
			}
			data, err := export.Render(table, format, now)
			if err != nil {
				return err
			}

			if output == "" {
				output = export.FileName(table.Title, format, now)
			}
			output = pathutil.MustResolve(output)
			if err := dialogs.WriteData(output, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s\n", len(table.Rows), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "/api/students", "API endpoint returning a list")
	cmd.Flags().StringVarP(&title, "title", "t", "Öğrenci Listesi", "Report title")
	cmd.Flags().StringVar(&columns, "columns", "", "Comma-separated columns (default: all keys of the first row)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: derived from the title)")
	return cmd
}

// newImportCmd creates the 'import' command group.
func newImportCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import records from spreadsheets",
	}

	importCmd.AddCommand(&cobra.Command{
		Use:   "students <file.xlsx>",
		Short: "Import students from an Excel workbook",
		Long: `Read the first sheet of an Excel workbook and send its rows to the
backend's bulk student import. The header row may use Turkish or English
column names (Ad/name, Soyad/surname, Sınıf/class, ...).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(pathutil.ExpandHome(args[0]))
			if err != nil {
				return err
			}

			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			resp, rows, err := export.ImportStudents(GetContext(), engine.Router(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows sent\n", rows)
			return printJSON(cmd.OutOrStdout(), resp)
		},
	})

	return importCmd
}
