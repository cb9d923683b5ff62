package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/gopdm/store"
)

func addStoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("store", "", "backend: sql or redis")
	f.String("driver", "", "database/sql driver: sqlite3, pgx or postgres")
	f.String("dsn", "", "database connection string")
	f.String("table", "", "table holding the objects")
	f.String("redis-addr", "", "Redis address")
	f.String("redis-prefix", "", "Redis key prefix")
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	sc := a.cfg.Store
	if sc.Kind == "redis" {
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
			Prefix:   sc.Redis.Prefix,
			TTL:      sc.Redis.TTL,
		}, a.ser)
	}
	db, err := sql.Open(sc.Driver, sc.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	st := store.NewSQLStore(db, a.ser, sc.Table, store.DialectFor(sc.Driver)).WithLogger(a.log)
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func newSaveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <file>...",
		Short: "Store documents read from files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			for _, path := range args {
				h, err := a.ser.CreateObjectFromFile(path)
				if err != nil {
					return err
				}
				err = st.Save(cmd.Context(), h)
				id := h.AsObject().UUID()
				h.AsObject().Destroy()
				if err != nil {
					return err
				}
				a.ui.success("%s stored as %s", path, id)
			}
			return nil
		},
	}
	addStoreFlags(cmd)
	return cmd
}

func newLoadCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "load <uuid>",
		Short: "Fetch a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			h, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer h.AsObject().Destroy()
			if output != "" {
				if err := a.ser.WithIndent("  ").WriteFile(output, h); err != nil {
					return err
				}
				a.ui.success("wrote %s", output)
				return nil
			}
			text, err := a.ser.WithIndent("  ").WriteObjectToString(h)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.ui.out, text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	addStoreFlags(cmd)
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			entries, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(a.ui.out, "%s\t", e.UUID)
				a.ui.head.Fprintln(a.ui.out, e.Class)
			}
			return nil
		},
	}
	addStoreFlags(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <uuid>...",
		Short: "Remove stored documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			for _, id := range args {
				if err := st.Delete(cmd.Context(), id); err != nil {
					return err
				}
				a.ui.success("deleted %s", id)
			}
			return nil
		},
	}
	addStoreFlags(cmd)
	return cmd
}

