package commands

import (
	"strings"

	"github.com/agrihope/backend/internal/domain"
	"github.com/agrihope/backend/internal/usecase"
	"github.com/spf13/cobra"
)

var (
	matchLimit   int
	matchCropCap int
)

type matchOutput struct {
	Tier     string           `json:"tier"`
	Count    int              `json:"count"`
	Products []domain.Product `json:"products"`
}

var matchCmd = &cobra.Command{
	Use:   "match <search terms>",
	Short: "Match catalog products against search terms",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}
		matcher := usecase.NewProductMatcher(c, usecase.MatchConfig{
			CropTierLimit: matchCropCap,
			ResultLimit:   matchLimit,
		}, newLogger())

		products, tier := matcher.MatchWithTier(strings.Join(args, " "))
		return printJSON(cmd.OutOrStdout(), matchOutput{
			Tier:     string(tier),
			Count:    len(products),
			Products: products,
		})
	},
}

func init() {
	matchCmd.Flags().IntVar(&matchLimit, "limit", 3, "maximum products returned by the later tiers")
	matchCmd.Flags().IntVar(&matchCropCap, "crop-limit", 3, "maximum products returned by the crop tier")
	rootCmd.AddCommand(matchCmd)
}
