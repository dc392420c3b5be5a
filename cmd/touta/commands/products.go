package commands

import (
	"github.com/agrihope/backend/internal/domain"
	"github.com/spf13/cobra"
)

var (
	productsCategory string
	productsOrganic  bool
	productsFeatured bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List catalog products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}

		filter := domain.ProductFilter{Category: productsCategory}
		if cmd.Flags().Changed("organic") {
			filter.Organic = &productsOrganic
		}
		if cmd.Flags().Changed("featured") {
			filter.Featured = &productsFeatured
		}
		return printJSON(cmd.OutOrStdout(), c.Filter(filter))
	},
}

func init() {
	productsCmd.Flags().StringVar(&productsCategory, "category", "", "only products in this category")
	productsCmd.Flags().BoolVar(&productsOrganic, "organic", false, "filter on the organic flag")
	productsCmd.Flags().BoolVar(&productsFeatured, "featured", false, "filter on the featured flag")
	rootCmd.AddCommand(productsCmd)
}
