package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/devnullvoid/dungeondraw/internal/bootstrap"
	"github.com/devnullvoid/dungeondraw/internal/config"
	"github.com/devnullvoid/dungeondraw/internal/sheet"
)

func newConfigCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change the drawing configuration of a scene",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the drawing configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return st.runDungeonSheet(false, func(app *bootstrap.App, ds *sheet.DungeonConfigSheet) error {
					data := ds.Data()

					return st.printer(cmd).emit(data, func(w io.Writer) {
						configTable(w, data.Object)
					})
				})
			},
		},
		&cobra.Command{
			Use:   "set option=value...",
			Short: "Change drawing options",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := parseConfig(args)
				if err != nil {
					return err
				}

				return st.runDungeonSheet(true, func(app *bootstrap.App, ds *sheet.DungeonConfigSheet) error {
					if err := ds.UpdateObject(cfg); err != nil {
						return err
					}

					return st.printer(cmd).message(cfg, "Updated %d options", len(cfg))
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default drawing configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return st.runDungeonSheet(true, func(app *bootstrap.App, ds *sheet.DungeonConfigSheet) error {
					if err := ds.ResetDefaults(); err != nil {
						return err
					}

					return st.printer(cmd).message(ds.Data().Object, "Restored the default configuration")
				})
			},
		},
		&cobra.Command{
			Use:   "theme <key>",
			Short: "Switch the drawing to a built-in theme",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.runDungeonSheet(true, func(app *bootstrap.App, ds *sheet.DungeonConfigSheet) error {
					if err := ds.ChangeTheme(args[0]); err != nil {
						return err
					}

					return st.printer(cmd).message(map[string]string{"theme": args[0]},
						"Switched to built-in theme %q", args[0])
				})
			},
		},
	)

	return cmd
}

// runDungeonSheet opens the dungeon config sheet of the selected scene.
func (st *state) runDungeonSheet(create bool, fn func(*bootstrap.App, *sheet.DungeonConfigSheet) error) error {
	return st.run(func(app *bootstrap.App) error {
		opts, err := sceneOptions(app, create)
		if err != nil {
			return err
		}

		return fn(app, sheet.NewDungeonConfigSheet(app.Registry, opts...))
	})
}

func newInitCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file template",
		Long: `Write the configuration file template to the --config path, or to the
default location when no path is given. An existing file is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				path string
				err  error
			)
			if p := st.v.GetString("config"); p != "" {
				path, err = config.CreateDefaultConfigFileAt(config.ExpandHomePath(p))
			} else {
				path, err = config.CreateDefaultConfigFile()
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Configuration file: %s\n", path)
			return err
		},
	}
}
