package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kitchen"
)

func newRecipeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Browse, add and cook recipes",
	}
	cmd.AddCommand(
		newRecipeListCmd(a),
		newRecipeShowCmd(a),
		newRecipeUseCmd(a),
		newRecipeAddCmd(a),
		newRecipeRmCmd(a),
	)
	return cmd
}

func (a *app) recipeID(prefix string) (string, error) {
	recipes := a.kitchen.Recipes.Recipes()
	ids := make([]string, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	return resolveID(prefix, ids)
}

func newRecipeListCmd(a *app) *cobra.Command {
	var cookable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes with what can be cooked now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := newTable(cmd)
			fmt.Fprintln(w, "ID\tName\tDifficulty\tTime\tStatus")
			fmt.Fprintln(w, "--\t----\t----------\t----\t------")
			for _, ra := range a.kitchen.Availability() {
				if cookable && !ra.CanCook {
					continue
				}
				status := "ready"
				if !ra.CanCook {
					status = fmt.Sprintf("missing %d", len(ra.Missing()))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d min\t%s\n",
					shortID(ra.Recipe.ID), ra.Recipe.Name, ra.Recipe.Difficulty, ra.Recipe.CookTime, status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&cookable, "cookable", false, "only recipes that can be cooked now")
	return cmd
}

func newRecipeShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recipe against current stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.recipeID(args[0])
			if err != nil {
				return err
			}
			ra, err := a.kitchen.RecipeAvailability(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			r := ra.Recipe
			fmt.Fprintf(out, "%s\n%s\n%d min, %d servings, %s\n\n", r.Name, r.Description, r.CookTime, r.Servings, r.Difficulty)

			conv := a.kitchen.Converter
			w := newTable(cmd)
			fmt.Fprintln(w, "Ingredient\tNeed\tHave\tStatus")
			fmt.Fprintln(w, "----------\t----\t----\t------")
			for _, ing := range ra.Ingredients {
				status := "ok"
				if !ing.IsAvailable {
					status = ing.Reason
					if ing.Deficit > 0 {
						status = fmt.Sprintf("%s, short %s %s", ing.Reason, formatFloat(ing.Deficit), ing.BaseUnit)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n",
					ing.Name,
					conv.FormatQuantityDisplay(ing.Name, ing.Quantity, ing.Unit),
					formatFloat(ing.AvailableBaseQuantity), ing.BaseUnit,
					status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			for i, step := range r.Instructions {
				fmt.Fprintf(out, "%d. %s\n", i+1, step)
			}
			return nil
		},
	}
}

func newRecipeUseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Cook a recipe and take its ingredients out of stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.recipeID(args[0])
			if err != nil {
				return err
			}
			plan, err := a.kitchen.UseRecipe(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cooked %s\n", plan.RecipeName)
			for _, line := range plan.Lines {
				fmt.Fprintf(out, "  -%s %s %s\n", formatFloat(line.BaseQuantity), line.BaseUnit, line.Name)
			}
			return nil
		},
	}
}

func newRecipeAddCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "add -f <recipe.yaml>",
		Short: "Add a recipe from a YAML file",
		Example: `  name: Telur Dadar
  cook_time: 10
  servings: 1
  difficulty: Mudah
  ingredients:
    - {name: Telur Ayam, quantity: 2, unit: butir}
    - {name: Garam, quantity: 0.25, unit: sdt}
  instructions:
    - Kocok telur dengan garam
    - Goreng hingga matang`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var n kitchen.NewRecipe
			if err := yaml.Unmarshal(data, &n); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			r, err := a.kitchen.Recipes.Add(n)
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context()); err != nil {
				return err
			}
			names := make([]string, len(r.Ingredients))
			for i, ing := range r.Ingredients {
				names[i] = ing.Name
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %q (%s)\n", shortID(r.ID), r.Name, strings.Join(names, ", "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "recipe YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRecipeRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.recipeID(args[0])
			if err != nil {
				return err
			}
			if err := a.kitchen.Recipes.Delete(id); err != nil {
				return err
			}
			if err := a.save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", shortID(id))
			return nil
		},
	}
}
