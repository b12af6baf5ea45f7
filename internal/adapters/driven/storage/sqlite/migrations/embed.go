// Package migrations holds the versioned schema of the SQLite store.
// Files are named NNN_description.up.sql with a matching .down.sql.
package migrations

import (
	"cmp"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Migration is one forward schema step.
type Migration struct {
	Version int
	Name    string
	Script  string
}

// After returns the up migrations with a version above applied, oldest first.
func After(applied int) ([]Migration, error) {
	return after(files, applied)
}

func after(fsys fs.FS, applied int) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	var pending []Migration
	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			return nil, fmt.Errorf("migration %s: name must start with a version number", name)
		}
		if version <= applied {
			continue
		}

		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		pending = append(pending, Migration{
			Version: version,
			Name:    strings.TrimSuffix(name, ".up.sql"),
			Script:  string(script),
		})
	}

	slices.SortFunc(pending, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return pending, nil
}
