package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/gadgetph/phone-catalog/pkg/types"
)

func init() {
	rootCmd.AddCommand(phonesCmd(), brandsCmd(), dropsCmd())
}

func phonesCmd() *cobra.Command {
	var (
		search  string
		brand   string
		bucket  string
		sortKey string
		sortDir string
	)

	cmd := &cobra.Command{
		Use:   "phones",
		Short: "List catalog phones with optional filters",
		Example: `  # List the current catalog window
  phone-catalog phones

  # Filter by brand and price bucket, sorted by price
  phone-catalog phones --brand Samsung --bucket midrange --sort price

  # Deep search across specs
  phone-catalog phones --search "5000mah"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()
			resp, err := c.ListPhones(cmd.Context(), domain.Query{
				SearchText: search,
				Brand:      brand,
				Bucket:     domain.ParseBucket(bucket),
				SortKey:    sortKey,
				SortDir:    domain.SortDirection(sortDir),
			})
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(resp)
			}

			if len(resp.Phones) == 0 {
				fmt.Println("No phones found.")
				return nil
			}

			fmt.Printf("Showing %d of %d phones\n\n", len(resp.Phones), resp.TotalFiltered)
			return printPhonesTable(resp.Phones)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "deep search across name and specs")
	cmd.Flags().StringVar(&brand, "brand", "", "brand filter")
	cmd.Flags().StringVar(&bucket, "bucket", "", "price bucket (budget, midrange, premium, flagship)")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key (price, name, brand)")
	cmd.Flags().StringVar(&sortDir, "dir", "asc", "sort direction (asc, desc)")

	return cmd
}

func brandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List distinct brands in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()
			brands, err := c.ListBrands(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(brands)
			}

			for _, b := range brands {
				fmt.Println(b)
			}
			return nil
		},
	}
}

func dropsCmd() *cobra.Command {
	var (
		brand string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "drops",
		Short: "Show the price drop leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()
			drops, err := c.ListDrops(cmd.Context(), brand, limit)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(drops)
			}

			if len(drops) == 0 {
				fmt.Println("No price drops right now.")
				return nil
			}

			return printDropsTable(drops)
		},
	}
	cmd.Flags().StringVar(&brand, "brand", "", "brand filter")
	cmd.Flags().IntVar(&limit, "limit", 0, "max rows (default: server default)")

	return cmd
}
