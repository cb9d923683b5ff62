package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/gopdm/remote"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <file>...",
		Short: "Serve documents over HTTP",
		Long: `Load the given documents and expose them through the remote API:
sessions, schemas, field access, method calls and change events.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := remote.NewServer(a.factory, remote.Config{
				SessionTTL:     a.cfg.Server.SessionTTL,
				JWTSecret:      a.cfg.Server.JWTSecret,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Serialize:      a.ser.Options(),
				Logger:         a.log,
			})
			for _, path := range args {
				h, err := a.ser.CreateObjectFromFile(path)
				if err != nil {
					return err
				}
				srv.AddDocument(h)
				a.log.Info("serving document", zap.String("file", path), zap.String("uuid", h.AsObject().UUID()))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.ui.success("listening on %s", a.cfg.Server.Addr)
			return srv.ListenAndServe(ctx, a.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default localhost:8420)")
	cmd.Flags().String("jwt-secret", "", "sign session tokens with this secret")
	cmd.Flags().Duration("session-ttl", 0, "idle time before a session expires")
	return cmd
}
