// Package importer provides the import command, which stores statements in the
// ledger.
package importer

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/moneyview/cmd/root"
	"fjacquet/moneyview/internal/fileutils"
	"fjacquet/moneyview/internal/logging"
)

var inputDir string

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import MT940 statements into the ledger",
	Long: `Import one MT940 statement (--input) or every statement of a directory (--dir)
into the ledger. Transactions already stored are replaced, so importing the same
file twice keeps a single copy.`,
	RunE: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputDir, "dir", "d", "", "Directory of statement files (.sta, .mt940, .txt)")
}

func importFunc(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer()
	if err != nil {
		return err
	}

	files, err := collectFiles(root.SharedFlags.Input, inputDir)
	if err != nil {
		return err
	}

	service := c.GetService()
	logger := c.GetLogger()
	ctx := root.Context(cmd)

	total, failed := 0, 0
	for _, file := range files {
		raw, err := fileutils.ReadFile(file)
		if err != nil {
			logger.WithError(err).Error("Failed to read statement",
				logging.Field{Key: logging.FieldInputFile, Value: file})
			failed++
			continue
		}
		n, err := service.Ingest(ctx, file, raw)
		if err != nil {
			logger.WithError(err).Error("Failed to import statement",
				logging.Field{Key: logging.FieldInputFile, Value: file})
			failed++
			continue
		}
		total += n
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions from %d of %d files\n", total, len(files)-failed, len(files))
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(files))
	}
	return nil
}

// collectFiles returns the single input file, or the statement files of dir in
// name order.
func collectFiles(input, dir string) ([]string, error) {
	switch {
	case input != "" && dir != "":
		return nil, errors.New("use either --input or --dir, not both")
	case input != "":
		return []string{input}, nil
	case dir == "":
		return nil, errors.New("input file (--input) or directory (--dir) is required")
	}

	files, err := fileutils.ListFilesWithExtension(dir, fileutils.StatementExtensions...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no statement files found in %s", dir)
	}
	return files, nil
}
