package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devnullvoid/dungeondraw/internal/api"
	"github.com/devnullvoid/dungeondraw/internal/bootstrap"
	"github.com/devnullvoid/dungeondraw/internal/version"
)

func newServeCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the theme and scene API over HTTP",
		Long: `Serve the theme registry and the scene sheets as a JSON API.

Sheet re-renders are pushed to websocket clients on /api/events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return st.run(func(app *bootstrap.App) error {
				return serve(ctx, app)
			})
		},
	}

	cmd.Flags().String("listen", "", "Address to listen on")
	if err := st.v.BindPFlag("listen", cmd.Flags().Lookup("listen")); err != nil {
		panic(err)
	}

	return cmd
}

func serve(ctx context.Context, app *bootstrap.App) error {
	srv, err := api.NewServer(ctx, app.Registry, app.Scenes,
		api.WithGM(app.Config.GM),
		api.WithLogger(app.Logger.WithComponent("api")),
	)
	if err != nil {
		return err
	}

	app.Logger.Info("dungeondraw %s serving module %s", version.GetFullVersionString(), app.Config.ModuleID)

	return srv.ListenAndServe(ctx, app.Config.Listen)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetBuildInfo()
			out := cmd.OutOrStdout()

			_, err := fmt.Fprintf(out, "%s %s\n  built:  %s\n  go:     %s %s/%s\n",
				version.ProjectName, version.GetFullVersionString(),
				info.BuildDate, info.GoVersion, info.OS, info.Arch)
			return err
		},
	}
}
