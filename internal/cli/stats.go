package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kitchen"
)

func newStatsCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize stock, recipes and what expires soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.kitchen.Ledger.Stats()
			rs := a.kitchen.RecipeStats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "items:          %d\n", st.TotalItems)
			fmt.Fprintf(out, "out of stock:   %d\n", st.OutOfStock)
			fmt.Fprintf(out, "categories:     %d\n", st.Categories)
			fmt.Fprintf(out, "expiring soon:  %d\n", st.ExpiringSoon)
			fmt.Fprintf(out, "recipes:        %d (%d cookable)\n", rs.TotalRecipes, rs.CookableRecipes)
			fmt.Fprintf(out, "shopping list:  %d\n", len(a.kitchen.Ledger.ShoppingList()))

			expiring := a.kitchen.Ledger.ExpiringItems(time.Duration(days) * 24 * time.Hour)
			if len(expiring) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			w := newTable(cmd)
			fmt.Fprintln(w, "Expiring\tIn\tDate")
			fmt.Fprintln(w, "--------\t--\t----")
			for _, e := range expiring {
				fmt.Fprintf(w, "%s\t%d days\t%s\n", e.Item.Name, e.DaysLeft, formatDate(e.Item.ExpiryDate))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", int(kitchen.ExpiryWarningWindow/(24*time.Hour)), "expiry window in days")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty kitchen with sample stock and recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(a.kitchen.Ledger.Items()) > 0 || len(a.kitchen.Recipes.Recipes()) > 0 {
				return fmt.Errorf("kitchen is not empty")
			}
			if err := a.kitchen.Seed(a.now()); err != nil {
				return err
			}
			if err := a.save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d items and %d recipes\n",
				len(a.kitchen.Ledger.Items()), len(a.kitchen.Recipes.Recipes()))
			return nil
		},
	}
}
