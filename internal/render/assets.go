package render

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest lists the bundled asset paths the renderer links into every
// document. It is produced by the asset-bundling step and consumed
// explicitly, so rendering never depends on filesystem enumeration
// order to discover stylesheets.
type Manifest struct {
	Styles  []string `json:"styles"`
	Scripts []string `json:"scripts"`
}

// LoadManifest reads an asset manifest file. A missing file yields an
// empty manifest: pages render without bundled assets rather than fail.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return Manifest{}, fmt.Errorf("read asset manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode asset manifest: %w", err)
	}
	return m, nil
}
