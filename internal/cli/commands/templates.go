package commands

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed all:templates
var templateFS embed.FS

// scaffoldFile is one embedded template file and where it lands in the workspace.
type scaffoldFile struct {
	src    string // path inside templateFS
	target string // path relative to the workspace, OS separators
}

// isSampleData reports whether the file belongs under data/.
func (f scaffoldFile) isSampleData() bool {
	return strings.HasPrefix(filepath.ToSlash(f.target), "data/")
}

// targetName maps a template path to its workspace path. Dotfiles are stored
// without the dot so the embed pattern and editors leave them alone.
func targetName(rel string) string {
	dir, base := path.Split(rel)
	if base == "gitignore" {
		base = ".gitignore"
	}
	return filepath.FromSlash(dir + base)
}

// scaffoldFiles lists the files of a workspace template in walk order.
func scaffoldFiles(template string) ([]scaffoldFile, error) {
	root := path.Join("templates", template)
	var files []scaffoldFile
	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, scaffoldFile{
			src:    p,
			target: targetName(strings.TrimPrefix(p, root+"/")),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unknown workspace template %q: %w", template, err)
	}
	return files, nil
}

// writeScaffold copies template into dir. Files that already exist are kept
// unless force is set.
func writeScaffold(template, dir string, force bool) (written, kept []scaffoldFile, err error) {
	files, err := scaffoldFiles(template)
	if err != nil {
		return nil, nil, err
	}

	for _, f := range files {
		dst := filepath.Join(dir, f.target)
		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				kept = append(kept, f)
				continue
			} else if !errors.Is(statErr, fs.ErrNotExist) {
				return written, kept, statErr
			}
		}

		content, err := templateFS.ReadFile(f.src)
		if err != nil {
			return written, kept, err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return written, kept, err
		}
		if err := os.WriteFile(dst, content, 0o600); err != nil {
			return written, kept, err
		}
		written = append(written, f)
	}
	return written, kept, nil
}
