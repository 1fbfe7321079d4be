package scores

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sql
var migrations embed.FS

// migrationFiles returns the *.sql files under sql/<dialect> in lexical order.
func migrationFiles(dialect string) ([]string, error) {
	var files []string
	err := fs.WalkDir(migrations, "sql/"+dialect, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
