package staging

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"assetsync/internal/classify"
	"assetsync/internal/services"
)

// ListStaged returns the valid regular files waiting in the working
// directories: images first, then generic files, each in lexical order. Files
// left over from earlier runs are included. Missing directories contribute
// nothing.
func ListStaged(layout Layout) ([]StagedFile, error) {
	var out []StagedFile
	for _, dir := range []struct {
		path string
		kind classify.Kind
	}{
		{layout.Images, classify.KindImage},
		{layout.Files, classify.KindFile},
	} {
		entries, err := os.ReadDir(dir.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, services.Wrap(services.ErrIO, "staging", "list", dir.path, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			path := filepath.Join(dir.path, name)
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if !classify.IsValidFileType(name) {
				continue
			}
			kind := dir.kind
			if kind == classify.KindImage && !classify.IsImage(name) {
				kind = classify.KindFile
			}
			out = append(out, StagedFile{Path: path, Name: name, Kind: kind, Ext: classify.Ext(name)})
		}
	}
	return out, nil
}

// DirInfo summarizes one directory for status output.
type DirInfo struct {
	Path   string
	Exists bool
	Files  int
	Size   int64
}

// Inspect counts the valid files directly inside path and their total size.
func Inspect(path string) DirInfo {
	info := DirInfo{Path: path}
	entries, err := os.ReadDir(path)
	if err != nil {
		return info
	}
	info.Exists = true
	for _, entry := range entries {
		if entry.IsDir() || !classify.IsValidFileType(entry.Name()) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		info.Files++
		info.Size += fi.Size()
	}
	return info
}
