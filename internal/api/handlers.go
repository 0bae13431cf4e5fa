package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
	"github.com/devnullvoid/dungeondraw/internal/scene"
	"github.com/devnullvoid/dungeondraw/internal/sheet"
	"github.com/devnullvoid/dungeondraw/internal/themes"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

type themeSet struct {
	Keys   []string       `json:"keys"`
	Themes themes.Presets `json:"themes"`
}

type themeList struct {
	Builtin themeSet `json:"builtin"`
	Custom  themeSet `json:"custom"`
}

type themeBody struct {
	Name   string         `json:"name"`
	Config dungeon.Config `json:"config"`
}

type keyedPreset struct {
	Key    string         `json:"key"`
	Name   string         `json:"name"`
	Config dungeon.Config `json:"config"`
}

type keyResult struct {
	Key string `json:"key"`
}

type sceneBody struct {
	Name string `json:"name"`
}

type changeThemeBody struct {
	Theme string `json:"theme"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if status > 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed: %v", err)
	}

	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, themes.ErrThemeNotFound), errors.Is(err, scene.ErrSceneNotFound):
		return http.StatusNotFound
	case errors.Is(err, themes.ErrThemeExists):
		return http.StatusConflict
	case errors.Is(err, themes.ErrEmptyName), errors.Is(err, dungeon.ErrInvalidOption), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	return nil
}

func themeRef(vars map[string]string) (themes.Ref, error) {
	ref, err := themes.ParseRef(vars["kind"], vars["key"])
	if err != nil {
		return themes.Ref{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	return ref, nil
}

// themeSheet returns a config sheet that is not bound to a scene.
func (s *Server) themeSheet() *sheet.ConfigSheet {
	return sheet.NewConfigSheet(s.registry, sheet.TabThemes,
		sheet.WithRenderer(s.hub),
		sheet.WithGM(s.isGM),
		sheet.WithLogger(s.log),
	)
}

// sceneOptions binds sheet collaborators to scene id. Reads leave a scene
// without a drawing alone; writes create the drawing.
func (s *Server) sceneOptions(id string, write bool) ([]sheet.Option, error) {
	d, err := s.scenes.Dungeon(id, write)
	if err != nil {
		return nil, err
	}

	return []sheet.Option{
		sheet.WithDungeon(sheet.Active(d)),
		sheet.WithScene(s.scenes.Updater(id)),
		sheet.WithRenderer(s.hub),
		sheet.WithGM(s.isGM),
		sheet.WithLogger(s.log),
	}, nil
}

func (s *Server) configSheet(r *http.Request, tab string, write bool) (*sheet.ConfigSheet, error) {
	opts, err := s.sceneOptions(mux.Vars(r)["id"], write)
	if err != nil {
		return nil, err
	}

	return sheet.NewConfigSheet(s.registry, tab, opts...), nil
}

func (s *Server) dungeonSheet(r *http.Request, write bool) (*sheet.DungeonConfigSheet, error) {
	opts, err := s.sceneOptions(mux.Vars(r)["id"], write)
	if err != nil {
		return nil, err
	}

	return sheet.NewDungeonConfigSheet(s.registry, opts...), nil
}

func (s *Server) handleListThemes(w http.ResponseWriter, _ *http.Request) {
	custom := s.registry.Load()

	writeJSON(w, http.StatusOK, themeList{
		Builtin: themeSet{Keys: s.registry.BuiltinKeys(), Themes: s.registry.Builtins()},
		Custom:  themeSet{Keys: custom.Keys(), Themes: custom},
	})
}

func (s *Server) handleCreateTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := dungeon.Validate(body.Config); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.registry.CreateFromConfig(body.Name, body.Config); err != nil {
		s.writeError(w, err)
		return
	}
	s.hub.Render(sheet.ConfigSheetID)

	if body.Config == nil {
		body.Config = dungeon.Config{}
	}
	writeJSON(w, http.StatusCreated, themes.Preset(body))
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	ref, err := themeRef(mux.Vars(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	preset, ok := s.registry.Lookup(ref)
	if !ok {
		s.writeError(w, fmt.Errorf("%w: %s", themes.ErrThemeNotFound, ref))
		return
	}

	writeJSON(w, http.StatusOK, preset)
}

func (s *Server) handleEditTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := dungeon.Validate(body.Config); err != nil {
		s.writeError(w, err)
		return
	}

	ts := sheet.NewThemeSheet(s.registry, mux.Vars(r)["key"],
		sheet.WithRenderer(s.hub),
		sheet.WithLogger(s.log),
	)
	if err := ts.UpdateObject(body.Name, body.Config); err != nil {
		s.writeError(w, err)
		return
	}
	s.hub.Render(sheet.ConfigSheetID)

	data, err := ts.Data()
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, keyedPreset(data))
}

func (s *Server) handleCopyTheme(w http.ResponseWriter, r *http.Request) {
	key, err := s.themeSheet().CopyTheme(mux.Vars(r)["key"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, keyResult{Key: key})
}

func (s *Server) handleDeleteTheme(w http.ResponseWriter, r *http.Request) {
	if err := s.themeSheet().DeleteTheme(mux.Vars(r)["key"]); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListScenes(w http.ResponseWriter, _ *http.Request) {
	list, err := s.scenes.List()
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	var body sceneBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	sc, err := s.scenes.Create(body.Name)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scenes.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	if err := s.scenes.Delete(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfigSheet(w http.ResponseWriter, r *http.Request) {
	cs, err := s.configSheet(r, r.URL.Query().Get("tab"), false)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cs.Data())
}

func (s *Server) handleUpdateConfigSheet(w http.ResponseWriter, r *http.Request) {
	var cfg dungeon.Config
	if err := decodeJSON(r, &cfg); err != nil {
		s.writeError(w, err)
		return
	}
	if err := dungeon.Validate(cfg); err != nil {
		s.writeError(w, err)
		return
	}

	cs, err := s.configSheet(r, "", true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := cs.UpdateObject(cfg); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cs.Data())
}

func (s *Server) handleResetConfigSheet(w http.ResponseWriter, r *http.Request) {
	cs, err := s.configSheet(r, "", true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := cs.ResetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cs.Data())
}

// handleSaveAsTheme stores the submitted configuration, or the scene's
// current one when none is sent, as a custom theme.
func (s *Server) handleSaveAsTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := dungeon.Validate(body.Config); err != nil {
		s.writeError(w, err)
		return
	}

	cs, err := s.configSheet(r, "", false)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cfg := body.Config
	if cfg == nil {
		cfg = cs.Data().Config
	}
	if err := cs.SaveAsTheme(body.Name, cfg); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cs.Data())
}

func (s *Server) handleApplyTheme(w http.ResponseWriter, r *http.Request) {
	ref, err := themeRef(mux.Vars(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	cs, err := s.configSheet(r, "", true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := cs.ApplyTheme(ref); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cs.Data())
}

func (s *Server) handleDungeonSheet(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dungeonSheet(r, false)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ds.Data())
}

func (s *Server) handleUpdateDungeonSheet(w http.ResponseWriter, r *http.Request) {
	var cfg dungeon.Config
	if err := decodeJSON(r, &cfg); err != nil {
		s.writeError(w, err)
		return
	}
	if err := dungeon.Validate(cfg); err != nil {
		s.writeError(w, err)
		return
	}

	ds, err := s.dungeonSheet(r, true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := ds.UpdateObject(cfg); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ds.Data())
}

func (s *Server) handleResetDungeonSheet(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dungeonSheet(r, true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := ds.ResetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ds.Data())
}

func (s *Server) handleChangeDungeonTheme(w http.ResponseWriter, r *http.Request) {
	var body changeThemeBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	ds, err := s.dungeonSheet(r, true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := ds.ChangeTheme(body.Theme); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ds.Data())
}
