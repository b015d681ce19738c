package commands

import (
	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/de-tools/medical-reports/pkg/store/filesystem"
	"github.com/spf13/cobra"
)

type ListingPrinter interface {
	Handle(dir string, files []domain.ReportFile) error
}

func NewListCmd(printer ListingPrinter) *cobra.Command {
	var dirPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := filesystem.NewDirectory(dirPath)
			if err != nil {
				return err
			}

			files, err := dir.List()
			if err != nil {
				return err
			}
			return printer.Handle(dir.Path(), files)
		},
	}

	cmd.Flags().StringVar(&dirPath, "dir", "uploads", "Reports directory")
	return cmd
}
