package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/placelist-cli/internal/model"
)

// Load reads a playlist file. The format is chosen by extension: .yaml/.yml
// parse as YAML, everything else as JSON. The top level is an array of
// playlist groups.
func Load(path string) ([]model.Playlist, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: reading input %s", path)
	}

	var playlists []model.Playlist
	if isYAML(path) {
		if err := yaml.Unmarshal(raw, &playlists); err != nil {
			return nil, eris.Wrapf(err, "batch: parsing yaml %s", path)
		}
	} else {
		if err := json.Unmarshal(raw, &playlists); err != nil {
			return nil, eris.Wrapf(err, "batch: parsing json %s", path)
		}
	}
	return playlists, nil
}

// Write serializes resolved playlists to path, format chosen by extension
// the same way Load chooses it.
func Write(path string, playlists []model.ResolvedPlaylist) error {
	var (
		raw []byte
		err error
	)
	if isYAML(path) {
		raw, err = yaml.Marshal(playlists)
	} else {
		raw, err = json.MarshalIndent(playlists, "", "  ")
	}
	if err != nil {
		return eris.Wrap(err, "batch: serializing output")
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return eris.Wrapf(err, "batch: writing output %s", path)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
