package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:     "convert <ingredient> <quantity> <unit>",
		Short:   "Convert a quantity to the ingredient's base unit",
		Example: "  kitchen convert beras 2 kg\n  kitchen convert garam 10 gram --to sdt",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			conv := a.kitchen.Converter
			base, err := conv.ToBaseUnit(args[0], qty, args[2])
			if err != nil {
				return err
			}
			if to == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatFloat(base.Quantity), base.Unit)
				return nil
			}
			v, err := conv.FromBaseUnit(args[0], base.Quantity, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatFloat(v), to)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target unit instead of the base unit")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "check <ingredient> <stock-qty> <stock-unit> <required-qty> <required-unit>",
		Short:   "Tell whether a stock covers a requirement",
		Example: "  kitchen check beras 1 kg 2 porsi",
		Args:    cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			required, err := parseQuantity(args[3])
			if err != nil {
				return err
			}
			ok := a.kitchen.Converter.IsStockSufficient(args[0], stock, args[2], required, args[4])
			if ok {
				fmt.Fprintln(cmd.OutOrStdout(), "sufficient")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "insufficient")
			}
			return nil
		},
	}
}

func newDeficitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deficit <ingredient> <stock-qty> <stock-unit> <required-qty> <required-unit>",
		Short: "Show how much is missing, in the base unit",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			required, err := parseQuantity(args[3])
			if err != nil {
				return err
			}
			d, err := a.kitchen.Converter.CalculateDeficit(args[0], stock, args[2], required, args[4])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatFloat(d.Deficit), d.Unit)
			return nil
		},
	}
}

func newUnitsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "units [ingredient]",
		Short: "List the units of an ingredient, or every known ingredient",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := a.kitchen.Converter
			if len(args) == 1 {
				units := conv.AvailableUnits(args[0])
				if len(units) == 0 {
					return fmt.Errorf("unknown ingredient %q", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(units, ", "))
				return nil
			}
			w := newTable(cmd)
			fmt.Fprintln(w, "Ingredient\tBase\tUnits")
			fmt.Fprintln(w, "----------\t----\t-----")
			for _, e := range conv.Table().Entries() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.BaseUnit, strings.Join(e.UnitNames(), ", "))
			}
			return w.Flush()
		},
	}
}

func newFormatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "format <ingredient> <quantity> <unit>",
		Short: "Render a quantity for display",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.kitchen.Converter.FormatQuantityDisplay(args[0], qty, args[2]))
			return nil
		},
	}
}
