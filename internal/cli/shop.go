package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kitchen"
)

func newShopCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Manage the shopping list",
	}
	cmd.AddCommand(newShopAddCmd(a), newShopListCmd(a), newShopBuyCmd(a), newShopRmCmd(a))
	return cmd
}

func (a *app) shoppingID(prefix string) (string, error) {
	list := a.kitchen.Ledger.ShoppingList()
	ids := make([]string, len(list))
	for i, si := range list {
		ids[i] = si.ID
	}
	return resolveID(prefix, ids)
}

func newShopAddCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "add <name> <quantity> <unit>",
		Short: "Put an entry on the shopping list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			si, err := a.kitchen.Ledger.AddShoppingItem(kitchen.NewShoppingItem{
				Name:     args[0],
				Category: category,
				Quantity: qty,
				Unit:     args[2],
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s to the shopping list\n", shortID(si.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "item category")
	return cmd
}

func newShopListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the shopping list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := newTable(cmd)
			fmt.Fprintln(w, "ID\tName\tCategory\tQuantity\tAuto")
			fmt.Fprintln(w, "--\t----\t--------\t--------\t----")
			for _, si := range a.kitchen.Ledger.ShoppingList() {
				auto := ""
				if si.IsAutoGenerated {
					auto = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n",
					shortID(si.ID), si.Name, si.Category, formatFloat(si.Quantity), si.Unit, auto)
			}
			return w.Flush()
		},
	}
}

func newShopBuyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <id>",
		Short: "Mark an entry as purchased and move it into stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.shoppingID(args[0])
			if err != nil {
				return err
			}
			item, err := a.kitchen.Ledger.MarkAsPurchased(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now %s %s\n", item.Name, formatFloat(item.Quantity), item.Unit)
			return nil
		},
	}
}

func newShopRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an entry from the shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.shoppingID(args[0])
			if err != nil {
				return err
			}
			if err := a.kitchen.Ledger.RemoveShoppingItem(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", shortID(id))
			return nil
		},
	}
}
