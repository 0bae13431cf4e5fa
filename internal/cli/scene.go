package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/devnullvoid/dungeondraw/internal/bootstrap"
	"github.com/devnullvoid/dungeondraw/internal/scene"
)

func newSceneCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scene",
		Aliases: []string{"scenes"},
		Short:   "Manage scenes",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a scene",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.run(func(app *bootstrap.App) error {
					sc, err := app.Scenes.Create(args[0])
					if err != nil {
						return err
					}

					return st.printer(cmd).message(sc, "Created scene %q (%s)", sc.Name, sc.ID)
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List scenes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return st.run(func(app *bootstrap.App) error {
					list, err := app.Scenes.List()
					if err != nil {
						return err
					}

					return st.printer(cmd).emit(list, func(w io.Writer) {
						row(w, "ID", "NAME", "BACKGROUND", "GRID", "DRAWING")
						for _, sc := range list {
							row(w, sc.ID, sc.Name, sc.BackgroundColor,
								formatValue(sc.GridAlpha)+" "+sc.GridColor, drawingState(sc))
						}
					})
				})
			},
		},
		&cobra.Command{
			Use:   "show [id|name]",
			Short: "Show a scene",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.run(func(app *bootstrap.App) error {
					var ref string
					if len(args) == 1 {
						ref = args[0]
					}
					sc, err := app.Scene(ref)
					if err != nil {
						return err
					}

					return st.printer(cmd).emit(sc, func(w io.Writer) {
						row(w, "ID", sc.ID)
						row(w, "NAME", sc.Name)
						row(w, "BACKGROUND", sc.BackgroundColor)
						row(w, "GRID ALPHA", formatValue(sc.GridAlpha))
						row(w, "GRID COLOR", sc.GridColor)
						row(w, "DRAWING", drawingState(sc))
					})
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id|name>",
			Short: "Delete a scene",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.run(func(app *bootstrap.App) error {
					sc, err := app.Scenes.Find(args[0])
					if err != nil {
						return err
					}
					if err := app.Scenes.Delete(sc.ID); err != nil {
						return err
					}

					return st.printer(cmd).message(map[string]string{"id": sc.ID},
						"Deleted scene %q", sc.Name)
				})
			},
		},
	)

	return cmd
}

func drawingState(sc scene.Scene) string {
	if sc.HasDungeon() {
		return "yes"
	}

	return "no"
}
