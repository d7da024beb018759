package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kitchen"
	"kitchen/internal/config"
	kitchenmsgpack "kitchen/msgpack"
)

type app struct {
	configPath string
	dbPath     string
	format     string
	debug      bool

	cfg     config.Config
	logger  zerolog.Logger
	store   kitchen.Store
	kitchen *kitchen.Kitchen
	now     func() time.Time
}

// NewRootCmd creates the kitchen command tree.
func NewRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	cmd := &cobra.Command{
		Use:           "kitchen",
		Short:         "Kitchen stock, shopping list and recipes",
		Long:          "kitchen tracks pantry stock in any unit, converts it per ingredient and tells which recipes can be cooked.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "config file")
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "database path (overrides config)")
	cmd.PersistentFlags().StringVar(&a.format, "format", "", "storage format: sqlite, json or msgpack (overrides config)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newConvertCmd(a),
		newCheckCmd(a),
		newDeficitCmd(a),
		newUnitsCmd(a),
		newFormatCmd(a),
		newItemCmd(a),
		newShopCmd(a),
		newRecipeCmd(a),
		newStatsCmd(a),
		newSeedCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database = a.dbPath
	}
	if a.format != "" {
		cfg.Format = a.format
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if a.debug {
		cfg.LogLevel = "debug"
	}
	a.cfg = cfg
	a.logger = config.InitLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.DatabasePath(), err)
	}
	a.store = store

	a.kitchen = kitchen.New(kitchen.Config{Logger: &a.logger, Now: a.now})
	snap, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.DatabasePath(), err)
	}
	if err := a.kitchen.Restore(snap); err != nil {
		return err
	}
	if err := cfg.Register(a.kitchen.Converter.Table()); err != nil {
		return err
	}
	a.kitchen.Ledger.AddHook(kitchen.AutosaveHook(store, a.kitchen))
	a.logger.Debug().
		Str("db", cfg.DatabasePath()).
		Str("format", cfg.Format).
		Int("items", len(snap.Items)).
		Int("recipes", len(snap.Recipes)).
		Msg("kitchen loaded")
	return nil
}

func openStore(cfg config.Config) (kitchen.Store, error) {
	path := cfg.DatabasePath()
	switch strings.ToLower(cfg.Format) {
	case config.FormatJSON:
		return &kitchen.JSONFile{Path: path}, nil
	case config.FormatMsgpack:
		return &kitchenmsgpack.File{Path: path}, nil
	default:
		if path != ":memory:" {
			if err := ensureDir(path); err != nil {
				return nil, err
			}
		}
		return kitchen.OpenSQLite(path)
	}
}

func (a *app) save(ctx context.Context) error {
	return a.store.Save(ctx, a.kitchen.Snapshot())
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
