package commands

import (
	"strings"

	"github.com/agrihope/backend/internal/app"
	"github.com/agrihope/backend/internal/domain"
	"github.com/spf13/cobra"
)

var askStatic bool

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Run a message through the full assistant pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg, newLogger())
		if err != nil {
			return err
		}
		defer a.Close()

		resp, err := a.Assistant.HandleQuery(cmd.Context(), &domain.AssistantRequest{
			Message:       strings.Join(args, " "),
			UseStaticData: askStatic,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var selfTestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the canned self-test query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg, newLogger())
		if err != nil {
			return err
		}
		defer a.Close()

		return printJSON(cmd.OutOrStdout(), a.Assistant.SelfTest(cmd.Context()))
	},
}

func init() {
	askCmd.Flags().BoolVar(&askStatic, "static", false, "use the built-in article instead of the configured source")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(selfTestCmd)
}
