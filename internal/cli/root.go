// Package cli implements the dungeondraw command line.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devnullvoid/dungeondraw/internal/bootstrap"
	"github.com/devnullvoid/dungeondraw/internal/sheet"
	"github.com/devnullvoid/dungeondraw/internal/version"
)

const envPrefix = "DUNGEONDRAW"

// state carries the flag values shared by every subcommand.
type state struct {
	v *viper.Viper
}

// NewRootCmd builds the command tree. Each call gets its own flag set and
// viper instance.
func NewRootCmd() *cobra.Command {
	st := &state{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "dungeondraw",
		Short: "Manage dungeon drawing themes and scenes",
		Long: `dungeondraw manages the look of dungeon drawings.

It keeps a registry of built-in and custom themes, applies them to the
drawing of a scene and serves the same operations over an HTTP API.`,
		Version:       version.GetVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	addPersistentFlags(cmd, st.v)

	cmd.AddCommand(
		newThemesCmd(st),
		newConfigCmd(st),
		newSceneCmd(st),
		newServeCmd(st),
		newInitCmd(st),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the root command and exits on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// addPersistentFlags adds the global flags and binds them to DUNGEONDRAW_*
// environment variables.
func addPersistentFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to YAML config file")
	flags.String("data-dir", "", "Directory for the settings database and log file")
	flags.String("module", "", "Settings namespace for custom themes")
	flags.StringP("scene", "s", "", "Scene id or name")
	flags.String("themes-dir", "", "Directory of extra built-in theme files")
	flags.Bool("debug", false, "Enable debug logging")
	flags.Bool("no-persist", false, "Keep settings in memory only")
	flags.BoolP("quiet", "q", false, "Discard log output")
	flags.Bool("gm", true, "Act as game master")
	flags.Bool("json", false, "Print JSON even on a terminal")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"config":     "config",
		"data_dir":   "data-dir",
		"module_id":  "module",
		"scene":      "scene",
		"themes_dir": "themes-dir",
		"debug":      "debug",
		"no_persist": "no-persist",
		"quiet":      "quiet",
		"gm":         "gm",
		"json":       "json",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
}

// options converts the bound flags into bootstrap options.
func (st *state) options() bootstrap.Options {
	opts := bootstrap.Options{
		ConfigPath: st.v.GetString("config"),
		ModuleID:   st.v.GetString("module_id"),
		DataDir:    st.v.GetString("data_dir"),
		Scene:      st.v.GetString("scene"),
		Listen:     st.v.GetString("listen"),
		ThemesDir:  st.v.GetString("themes_dir"),
		Debug:      st.v.GetBool("debug"),
		NoPersist:  st.v.GetBool("no_persist"),
		Quiet:      st.v.GetBool("quiet"),
	}
	if st.v.IsSet("gm") {
		gm := st.v.GetBool("gm")
		opts.GM = &gm
	}

	return opts
}

// open bootstraps the services. Callers close the returned app.
func (st *state) open() (*bootstrap.App, error) {
	app, err := bootstrap.Bootstrap(st.options())
	if err != nil {
		return nil, fmt.Errorf("bootstrap failed: %w", err)
	}

	return app, nil
}

// run opens the app, hands it to fn and closes it again.
func (st *state) run(fn func(app *bootstrap.App) error) error {
	app, err := st.open()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	return fn(app)
}

// sceneOptions resolves the selected scene and binds the sheet
// collaborators to it.
func sceneOptions(app *bootstrap.App, create bool) ([]sheet.Option, error) {
	sc, err := app.Scene("")
	if err != nil {
		return nil, err
	}

	return app.SheetOptions(sc, create, logRenderer(app))
}

// logRenderer stands in for a display: it records which sheet would redraw.
func logRenderer(app *bootstrap.App) sheet.Renderer {
	log := app.Logger.WithComponent("render")

	return sheet.RenderFunc(func(sheetID string) {
		log.Debug("Render %s", sheetID)
	})
}
