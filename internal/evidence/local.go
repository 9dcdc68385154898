package evidence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local fetches snapshots from directories on the local filesystem. The
// repository reference is a path to a checked-out project.
type Local struct{}

func (Local) Fetch(ctx context.Context, repoRef string) (*Snapshot, error) {
	info, err := os.Stat(repoRef)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSubjectAccess, repoRef)
	}

	snap := &Snapshot{
		Name:  filepath.Base(repoRef),
		Files: map[string]FileMeta{},
	}

	root := os.DirFS(repoRef)
	err = fs.WalkDir(root, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == "." {
			return nil
		}

		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "__pycache__" || d.Name() == ".venv" {
				return fs.SkipDir
			}
			snap.Directories = append(snap.Directories, path)
			return nil
		}

		var size int64
		if fi, err := d.Info(); err == nil {
			size = fi.Size()
		}
		snap.Files[path] = FileMeta{Size: size}

		switch strings.ToLower(path) {
		case "readme.md":
			snap.ReadmePresent = true
		case "requirements.txt":
			snap.RequirementsPresent = true
		case ".gitignore":
			snap.GitignorePresent = true
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSubjectAccess, repoRef, err)
	}
	return snap, nil
}
