package publish

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// copyTree mirrors src into dst. dst must not already exist: every
// release directory is written exactly once and never updated in place.
func copyTree(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("release dir %s already exists", dst)
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // path comes from WalkDir
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst) //nolint:gosec // path derived from release dir
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// scanForHosts greps the textual files of a tree for forbidden
// hostnames and returns "file: host" descriptions of every hit.
func scanForHosts(root string, hosts []string) ([]string, error) {
	if len(hosts) == 0 {
		return nil, nil
	}
	var hits []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !textual(d.Name()) {
			return nil
		}
		data, err := os.ReadFile(path) //nolint:gosec // path comes from WalkDir
		if err != nil {
			return err
		}
		content := string(data)
		for _, host := range hosts {
			if strings.Contains(content, host) {
				rel, _ := filepath.Rel(root, path)
				hits = append(hits, rel+": "+host)
			}
		}
		return nil
	})
	return hits, err
}

func textual(name string) bool {
	switch filepath.Ext(name) {
	case ".html", ".xml", ".txt", ".css", ".js", ".json":
		return true
	}
	return false
}
