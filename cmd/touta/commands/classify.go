package commands

import (
	"strings"

	"github.com/agrihope/backend/internal/usecase"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Show how a message is classified",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}
		classifier := usecase.NewQueryClassifier(c.CropNames(), newLogger())
		return printJSON(cmd.OutOrStdout(), classifier.Classify(strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
