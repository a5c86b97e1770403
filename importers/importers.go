package importers

import (
	"errors"
	"os"
	"path/filepath"
)

// FileImporter reads scripts from the file system. Relative paths are
// resolved against WorkDir.
type FileImporter struct {
	WorkDir string
}

// Name returns the absolute path of the script. If the path cannot be made
// absolute, the joined path is returned.
func (m *FileImporter) Name(path string) string {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.WorkDir, path)
		if p, err := filepath.Abs(path); err == nil {
			path = p
		}
	}
	return path
}

// Import returns the content of the script at path. A leading shebang line
// is turned into a comment, so executable scripts compile.
func (m *FileImporter) Import(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("invalid import call")
	}
	data, err := os.ReadFile(m.Name(path))
	if err != nil {
		return nil, err
	}
	Shebang2Slashes(data)
	return data, nil
}

// Shebang2Slashes replaces "#!" at the start of script with "//".
func Shebang2Slashes(script []byte) {
	if len(script) > 1 && script[0] == '#' && script[1] == '!' {
		script[0] = '/'
		script[1] = '/'
	}
}
