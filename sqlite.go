package kitchen

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists kitchen snapshots in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and bootstraps the
// schema. ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// one connection, so ":memory:" is a single database
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			position INTEGER,
			name TEXT,
			category TEXT,
			quantity REAL,
			unit TEXT,
			base_quantity REAL,
			base_unit TEXT,
			expiry_date TEXT,
			created_at TEXT,
			updated_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS shopping_items (
			id TEXT PRIMARY KEY,
			position INTEGER,
			name TEXT,
			category TEXT,
			quantity REAL,
			unit TEXT,
			base_quantity REAL,
			base_unit TEXT,
			is_auto_generated INTEGER,
			is_purchased INTEGER,
			created_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS recipes (
			id TEXT PRIMARY KEY,
			position INTEGER,
			name TEXT,
			description TEXT,
			cook_time INTEGER,
			servings INTEGER,
			difficulty TEXT,
			created_at TEXT,
			updated_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS recipe_ingredients (
			recipe_id TEXT,
			position INTEGER,
			name TEXT,
			quantity REAL,
			unit TEXT,
			base_quantity REAL,
			base_unit TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS recipe_instructions (
			recipe_id TEXT,
			position INTEGER,
			step TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS conversions (
			ingredient TEXT,
			base_unit TEXT,
			position INTEGER,
			unit TEXT,
			factor REAL,
			PRIMARY KEY (ingredient, unit)
		);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Save replaces the stored state with snap in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"items", "shopping_items", "recipes", "recipe_ingredients", "recipe_instructions", "conversions"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for i, item := range snap.Items {
		_, err := tx.ExecContext(ctx, `INSERT INTO items (id, position, name, category, quantity, unit, base_quantity, base_unit, expiry_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, i, item.Name, item.Category, item.Quantity, item.Unit, item.BaseQuantity, item.BaseUnit,
			formatTime(item.ExpiryDate), formatTime(item.CreatedAt), formatTime(item.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert item %s: %w", item.ID, err)
		}
	}
	for i, si := range snap.Shopping {
		_, err := tx.ExecContext(ctx, `INSERT INTO shopping_items (id, position, name, category, quantity, unit, base_quantity, base_unit, is_auto_generated, is_purchased, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			si.ID, i, si.Name, si.Category, si.Quantity, si.Unit, si.BaseQuantity, si.BaseUnit,
			boolInt(si.IsAutoGenerated), boolInt(si.IsPurchased), formatTime(si.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert shopping item %s: %w", si.ID, err)
		}
	}
	for i, r := range snap.Recipes {
		_, err := tx.ExecContext(ctx, `INSERT INTO recipes (id, position, name, description, cook_time, servings, difficulty, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, r.Name, r.Description, r.CookTime, r.Servings, string(r.Difficulty), formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert recipe %s: %w", r.ID, err)
		}
		for j, ing := range r.Ingredients {
			_, err := tx.ExecContext(ctx, `INSERT INTO recipe_ingredients (recipe_id, position, name, quantity, unit, base_quantity, base_unit) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.ID, j, ing.Name, ing.Quantity, ing.Unit, ing.BaseQuantity, ing.BaseUnit)
			if err != nil {
				return fmt.Errorf("insert ingredient of %s: %w", r.ID, err)
			}
		}
		for j, step := range r.Instructions {
			if _, err := tx.ExecContext(ctx, `INSERT INTO recipe_instructions (recipe_id, position, step) VALUES (?, ?, ?)`, r.ID, j, step); err != nil {
				return fmt.Errorf("insert instruction of %s: %w", r.ID, err)
			}
		}
	}
	for _, e := range snap.Conversions {
		for j, uf := range e.Units {
			_, err := tx.ExecContext(ctx, `INSERT INTO conversions (ingredient, base_unit, position, unit, factor) VALUES (?, ?, ?, ?, ?)`,
				string(e.Name), e.BaseUnit, j, uf.Unit, uf.Factor)
			if err != nil {
				return fmt.Errorf("insert conversion %s: %w", e.Name, err)
			}
		}
	}
	return tx.Commit()
}

// Load reads the stored state. An empty database gives an empty snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Items, err = s.loadItems(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Shopping, err = s.loadShopping(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Recipes, err = s.loadRecipes(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Conversions, err = s.loadConversions(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *SQLiteStore) loadItems(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, category, quantity, unit, base_quantity, base_unit, expiry_date, created_at, updated_at FROM items ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var item Item
		var expiry, created, updated string
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Quantity, &item.Unit, &item.BaseQuantity, &item.BaseUnit, &expiry, &created, &updated); err != nil {
			return nil, err
		}
		if item.ExpiryDate, err = parseTime(expiry); err != nil {
			return nil, err
		}
		if item.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if item.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) loadShopping(ctx context.Context) ([]ShoppingItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, category, quantity, unit, base_quantity, base_unit, is_auto_generated, is_purchased, created_at FROM shopping_items ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ShoppingItem
	for rows.Next() {
		var si ShoppingItem
		var auto, purchased int
		var created string
		if err := rows.Scan(&si.ID, &si.Name, &si.Category, &si.Quantity, &si.Unit, &si.BaseQuantity, &si.BaseUnit, &auto, &purchased, &created); err != nil {
			return nil, err
		}
		si.IsAutoGenerated = auto != 0
		si.IsPurchased = purchased != 0
		if si.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, si)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadRecipes(ctx context.Context) ([]Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, cook_time, servings, difficulty, created_at, updated_at FROM recipes ORDER BY position`)
	if err != nil {
		return nil, err
	}
	var recipes []Recipe
	for rows.Next() {
		var r Recipe
		var difficulty, created, updated string
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.CookTime, &r.Servings, &difficulty, &created, &updated); err != nil {
			rows.Close()
			return nil, err
		}
		r.Difficulty = Difficulty(difficulty)
		if r.CreatedAt, err = parseTime(created); err != nil {
			rows.Close()
			return nil, err
		}
		if r.UpdatedAt, err = parseTime(updated); err != nil {
			rows.Close()
			return nil, err
		}
		recipes = append(recipes, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		if recipes[i].Ingredients, err = s.loadIngredients(ctx, recipes[i].ID); err != nil {
			return nil, err
		}
		if recipes[i].Instructions, err = s.loadInstructions(ctx, recipes[i].ID); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (s *SQLiteStore) loadIngredients(ctx context.Context, recipeID string) ([]RecipeIngredient, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, quantity, unit, base_quantity, base_unit FROM recipe_ingredients WHERE recipe_id = ? ORDER BY position`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RecipeIngredient
	for rows.Next() {
		var ing RecipeIngredient
		if err := rows.Scan(&ing.Name, &ing.Quantity, &ing.Unit, &ing.BaseQuantity, &ing.BaseUnit); err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadInstructions(ctx context.Context, recipeID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT step FROM recipe_instructions WHERE recipe_id = ? ORDER BY position`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var step string
		if err := rows.Scan(&step); err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadConversions(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ingredient, base_unit, unit, factor FROM conversions ORDER BY ingredient, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var name string
		var base BaseUnit
		var uf UnitFactor
		if err := rows.Scan(&name, &base, &uf.Unit, &uf.Factor); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].Name != Name(name) {
			out = append(out, Entry{Name: Name(name), BaseUnit: base})
		}
		last := &out[len(out)-1]
		last.Units = append(last.Units, uf)
	}
	return out, rows.Err()
}
