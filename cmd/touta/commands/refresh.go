package commands

import (
	"fmt"

	"github.com/agrihope/backend/internal/app"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh-articles",
	Short: "Drop the cached article set so the next query reads the database",
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

		dropped, err := a.RefreshArticles(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case cfg.Articles.Source != "postgres":
			fmt.Fprintln(out, "static articles are not cached")
		case dropped:
			fmt.Fprintln(out, "cached articles dropped")
		default:
			fmt.Fprintln(out, "no cached articles")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
