package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/devnullvoid/dungeondraw/internal/bootstrap"
	"github.com/devnullvoid/dungeondraw/internal/sheet"
	"github.com/devnullvoid/dungeondraw/internal/themes"
)

// themeList is the JSON shape of "themes list".
type themeList struct {
	Themes          themes.Presets `json:"themes"`
	ThemeKeys       []string       `json:"themeKeys"`
	CustomThemes    themes.Presets `json:"customThemes"`
	CustomThemeKeys []string       `json:"customThemeKeys"`
}

func newThemesCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "themes",
		Aliases: []string{"theme"},
		Short:   "List, edit and apply themes",
	}

	cmd.AddCommand(
		newThemesListCmd(st),
		newThemesShowCmd(st),
		newThemesSaveAsCmd(st),
		newThemesCopyCmd(st),
		newThemesDeleteCmd(st),
		newThemesRenameCmd(st),
		newThemesSetCmd(st),
		newThemesApplyCmd(st),
		newThemesExportCmd(st),
		newThemesImportCmd(st),
	)

	return cmd
}

func newThemesListCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and custom themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.run(func(app *bootstrap.App) error {
				data := sheet.NewConfigSheet(app.Registry, sheet.TabThemes).Data()
				list := themeList{
					Themes:          data.Themes,
					ThemeKeys:       data.ThemeKeys,
					CustomThemes:    data.CustomThemes,
					CustomThemeKeys: data.CustomThemeKeys,
				}

				return st.printer(cmd).emit(list, func(w io.Writer) {
					row(w, "SOURCE", "KEY", "NAME", "OPTIONS")
					for _, key := range list.ThemeKeys {
						p := list.Themes[key]
						row(w, themes.SourceBuiltin.String(), key, p.Name, strconv.Itoa(len(p.Config)))
					}
					for _, key := range list.CustomThemeKeys {
						p := list.CustomThemes[key]
						row(w, themes.SourceCustom.String(), key, p.Name, strconv.Itoa(len(p.Config)))
					}
				})
			})
		},
	}
}

func newThemesShowCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "show <builtin|custom> <key>",
		Short: "Show the options of a theme",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := themes.ParseRef(args[0], args[1])
			if err != nil {
				return err
			}

			return st.run(func(app *bootstrap.App) error {
				preset, ok := app.Registry.Lookup(ref)
				if !ok {
					return fmt.Errorf("%w: %s", themes.ErrThemeNotFound, ref)
				}

				return st.printer(cmd).emit(preset, func(w io.Writer) {
					fmt.Fprintf(w, "%s (%s)\n\n", preset.Name, ref)
					configTable(w, preset.Config)
				})
			})
		},
	}
}

func newThemesSaveAsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "save-as <name> [option=value...]",
		Short: "Save the scene's drawing configuration as a custom theme",
		Long: `Save the drawing configuration of the selected scene as a custom theme.

Option assignments override single values before saving. A custom theme
with the same name is replaced.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseConfig(args[1:])
			if err != nil {
				return err
			}

			return st.run(func(app *bootstrap.App) error {
				opts, err := sceneOptions(app, false)
				if err != nil {
					return err
				}

				cs := sheet.NewConfigSheet(app.Registry, sheet.TabSettings, opts...)
				formData := cs.Data().Config.Merge(overrides)
				if err := cs.SaveAsTheme(args[0], formData); err != nil {
					return err
				}

				return st.printer(cmd).message(map[string]string{"key": args[0]},
					"Saved custom theme %q", args[0])
			})
		},
	}
}

func newThemesCopyCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <key>",
		Short: "Duplicate a custom theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(func(app *bootstrap.App) error {
				cs := sheet.NewConfigSheet(app.Registry, sheet.TabThemes, sheet.WithRenderer(logRenderer(app)))
				key, err := cs.CopyTheme(args[0])
				if err != nil {
					return err
				}
				if key == "" {
					return fmt.Errorf("%w: %s", themes.ErrThemeNotFound, themes.Custom(args[0]))
				}

				return st.printer(cmd).message(map[string]string{"key": key},
					"Copied %q to %q", args[0], key)
			})
		},
	}
}

func newThemesDeleteCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a custom theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(func(app *bootstrap.App) error {
				cs := sheet.NewConfigSheet(app.Registry, sheet.TabThemes, sheet.WithRenderer(logRenderer(app)))
				if err := cs.DeleteTheme(args[0]); err != nil {
					return err
				}

				return st.printer(cmd).message(map[string]string{"key": args[0]},
					"Deleted custom theme %q", args[0])
			})
		},
	}
}

// editTheme opens the editor for key through the config sheet, the way a
// user reaches it from the themes tab.
func editTheme(app *bootstrap.App, key string) (*sheet.ThemeSheet, error) {
	cs := sheet.NewConfigSheet(app.Registry, sheet.TabThemes, sheet.WithRenderer(logRenderer(app)))

	return cs.EditTheme(key)
}

func newThemesRenameCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <key> <name>",
		Short: "Rename a custom theme",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(func(app *bootstrap.App) error {
				ts, err := editTheme(app, args[0])
				if err != nil {
					return err
				}
				if err := ts.UpdateObject(args[1], nil); err != nil {
					return err
				}

				return st.printer(cmd).message(map[string]string{"key": ts.Key()},
					"Renamed %q to %q", args[0], ts.Key())
			})
		},
	}
}

func newThemesSetCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> option=value...",
		Short: "Change options of a custom theme",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := parseConfig(args[1:])
			if err != nil {
				return err
			}

			return st.run(func(app *bootstrap.App) error {
				ts, err := editTheme(app, args[0])
				if err != nil {
					return err
				}
				if err := ts.UpdateObject("", cfg); err != nil {
					return err
				}

				data, err := ts.Data()
				if err != nil {
					return err
				}

				return st.printer(cmd).emit(data, func(w io.Writer) {
					fmt.Fprintf(w, "Updated %d options of %q\n", len(cfg), data.Key)
				})
			})
		},
	}
}

func newThemesApplyCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <builtin|custom> <key>",
		Short: "Apply a theme to the scene's drawing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := themes.ParseRef(args[0], args[1])
			if err != nil {
				return err
			}

			return st.run(func(app *bootstrap.App) error {
				opts, err := sceneOptions(app, true)
				if err != nil {
					return err
				}

				cs := sheet.NewConfigSheet(app.Registry, sheet.TabThemes, opts...)
				if err := cs.ApplyTheme(ref); err != nil {
					return err
				}

				return st.printer(cmd).message(map[string]string{"theme": ref.String()},
					"Applied %s", ref)
			})
		},
	}
}

func newThemesExportCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the custom themes to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(func(app *bootstrap.App) error {
				data, err := app.Registry.Export()
				if err != nil {
					return err
				}

				if len(args) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), data)
					return err
				}

				if err := os.WriteFile(args[0], []byte(data+"\n"), 0o600); err != nil {
					return fmt.Errorf("write %s: %w", args[0], err)
				}
				app.Logger.Info("Exported custom themes to %s", args[0])

				return nil
			})
		},
	}
}

func newThemesImportCmd(st *state) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add custom themes from an exported file",
		Long: `Add the custom themes of an exported file.

Themes are keyed by name. Without --overwrite a name that is already taken
gets a numbered copy name instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			incoming, err := themes.Parse(string(data))
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			return st.run(func(app *bootstrap.App) error {
				written, err := app.Registry.Import(incoming, overwrite)
				if err != nil {
					return err
				}

				return st.printer(cmd).emit(map[string][]string{"keys": written}, func(w io.Writer) {
					row(w, "IMPORTED")
					for _, key := range written {
						row(w, key)
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace custom themes with the same name")

	return cmd
}
