package refmatch

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestEntry pairs a gallery label with its bundled image file name.
type ManifestEntry struct {
	Label string `yaml:"label"`
	Image string `yaml:"image"`
}

// DefaultManifestName is the gallery manifest file name inside the gallery
// directory.
const DefaultManifestName = "gallery.yaml"

// imageExtensions are tried, in order, when a manifest entry omits the file
// extension. HEIC is resolvable but not decodable by the image registry;
// such entries are skipped at embedding time like any unreadable file.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".heic"}

// LoadManifest reads the gallery manifest. A missing, unreadable, or
// malformed manifest yields an empty list, never an error: an empty gallery
// means "classifier unavailable", which the cascade treats as a soft miss.
func LoadManifest(path string) []ManifestEntry {
	data, err := os.ReadFile(path) //nolint:gosec // G304: bundled manifest path comes from config
	if err != nil {
		slog.Debug("Gallery manifest unavailable", "path", path, "error", err)
		return nil
	}
	var entries []ManifestEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		slog.Warn("Gallery manifest malformed; reference matching disabled", "path", path, "error", err)
		return nil
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Label != "" && e.Image != "" {
			out = append(out, e)
		}
	}
	return out
}

// ResolveAsset locates an image file within dir by exact name first, then by
// appending the common image extensions. It returns "" when nothing exists.
func ResolveAsset(dir, name string) string {
	exact := filepath.Join(dir, name)
	if fileExists(exact) {
		return exact
	}
	for _, ext := range imageExtensions {
		candidate := exact + ext
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
