package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kitchen"
)

func newItemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage stock items",
	}
	cmd.AddCommand(newItemAddCmd(a), newItemListCmd(a), newItemUpdateCmd(a), newItemRmCmd(a))
	return cmd
}

func (a *app) itemID(prefix string) (string, error) {
	items := a.kitchen.Ledger.Items()
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return resolveID(prefix, ids)
}

func newItemAddCmd(a *app) *cobra.Command {
	var category, expires string
	cmd := &cobra.Command{
		Use:     "add <name> <quantity> <unit>",
		Short:   "Add a stock item",
		Example: "  kitchen item add Beras 5 kg --category 'Bahan Pokok' --expires 2026-12-01",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			expiry, err := parseDate(expires)
			if err != nil {
				return err
			}
			item, err := a.kitchen.Ledger.AddItem(kitchen.NewItem{
				Name:       args[0],
				Category:   category,
				Quantity:   qty,
				Unit:       args[2],
				ExpiryDate: expiry,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s %s = %s %s)\n", shortID(item.ID),
				formatFloat(item.Quantity), item.Unit, formatFloat(item.BaseQuantity), item.BaseUnit)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "item category")
	cmd.Flags().StringVar(&expires, "expires", "", "expiry date (YYYY-MM-DD)")
	return cmd
}

func newItemListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stock items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conv := a.kitchen.Converter
			w := newTable(cmd)
			fmt.Fprintln(w, "ID\tName\tCategory\tQuantity\tBase\tExpires")
			fmt.Fprintln(w, "--\t----\t--------\t--------\t----\t-------")
			for _, it := range a.kitchen.Ledger.Items() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s %s\t%s\n",
					shortID(it.ID), it.Name, it.Category,
					conv.FormatQuantityDisplay(it.Name, it.Quantity, it.Unit),
					formatFloat(it.BaseQuantity), it.BaseUnit,
					formatDate(it.ExpiryDate))
			}
			return w.Flush()
		},
	}
}

func newItemUpdateCmd(a *app) *cobra.Command {
	var name, category, unit, expires string
	var qty float64
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.itemID(args[0])
			if err != nil {
				return err
			}
			var upd kitchen.ItemUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				upd.Name = &name
			}
			if flags.Changed("category") {
				upd.Category = &category
			}
			if flags.Changed("quantity") {
				upd.Quantity = &qty
			}
			if flags.Changed("unit") {
				upd.Unit = &unit
			}
			if flags.Changed("expires") {
				expiry, err := parseDate(expires)
				if err != nil {
					return err
				}
				upd.ExpiryDate = &expiry
			}
			item, err := a.kitchen.Ledger.UpdateItem(id, upd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s %s = %s %s)\n", shortID(item.ID),
				formatFloat(item.Quantity), item.Unit, formatFloat(item.BaseQuantity), item.BaseUnit)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().Float64Var(&qty, "quantity", 0, "new quantity")
	cmd.Flags().StringVar(&unit, "unit", "", "new unit")
	cmd.Flags().StringVar(&expires, "expires", "", "new expiry date (YYYY-MM-DD)")
	return cmd
}

func newItemRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.itemID(args[0])
			if err != nil {
				return err
			}
			if err := a.kitchen.Ledger.DeleteItem(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", shortID(id))
			return nil
		},
	}
}
