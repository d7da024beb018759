package kitchen

import "time"

// Seed fills an empty kitchen with a starter stock and two recipes.
func (k *Kitchen) Seed(now time.Time) error {
	day := 24 * time.Hour
	items := []NewItem{
		{Name: "Beras", Category: "Bahan Pokok", Quantity: 5, Unit: "kg", ExpiryDate: now.Add(30 * day)},
		{Name: "Susu Segar", Category: "Dairy", Quantity: 2, Unit: "liter", ExpiryDate: now.Add(day)},
		{Name: "Bawang Merah", Category: "Bumbu", Quantity: 0.5, Unit: "kg", ExpiryDate: now.Add(7 * day)},
		{Name: "Garam", Category: "Bumbu", Quantity: 1, Unit: "kg", ExpiryDate: now.Add(30 * day)},
		{Name: "Telur Ayam", Category: "Protein", Quantity: 0, Unit: "butir", ExpiryDate: now.Add(7 * day)},
	}
	for _, n := range items {
		if _, err := k.Ledger.AddItem(n); err != nil {
			return err
		}
	}

	recipes := []NewRecipe{
		{
			Name:        "Nasi Goreng Sederhana",
			Description: "Nasi goreng klasik dengan bumbu dasar yang lezat",
			Ingredients: []IngredientInput{
				{Name: "Beras", Quantity: 2, Unit: "porsi"},
				{Name: "Bawang Merah", Quantity: 3, Unit: "siung"},
				{Name: "Garam", Quantity: 1, Unit: "sdt"},
				{Name: "Telur Ayam", Quantity: 2, Unit: "butir"},
			},
			Instructions: []string{
				"Masak nasi terlebih dahulu dan dinginkan",
				"Iris bawang merah tipis-tipis",
				"Panaskan minyak, tumis bawang merah hingga harum",
				"Masukkan telur, orak-arik",
				"Tambahkan nasi, aduk rata",
				"Bumbui dengan garam, aduk hingga merata",
				"Angkat dan sajikan",
			},
			CookTime:   20,
			Servings:   2,
			Difficulty: DifficultyEasy,
		},
		{
			Name:        "Tumis Bawang Merah",
			Description: "Tumisan sederhana untuk pelengkap makan",
			Ingredients: []IngredientInput{
				{Name: "Bawang Merah", Quantity: 200, Unit: "gram"},
				{Name: "Garam", Quantity: 0.5, Unit: "sdt"},
			},
			Instructions: []string{
				"Iris bawang merah sesuai selera",
				"Panaskan minyak dalam wajan",
				"Tumis bawang merah hingga layu",
				"Tambahkan garam, aduk rata",
				"Masak hingga matang dan angkat",
			},
			CookTime:   10,
			Servings:   4,
			Difficulty: DifficultyEasy,
		},
	}
	for _, n := range recipes {
		if _, err := k.Recipes.Add(n); err != nil {
			return err
		}
	}
	return nil
}
