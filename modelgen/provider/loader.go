package provider

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Loader reads and parses TypeScript files, caching each file by its
// absolute path. It is safe for concurrent use.
type Loader struct {
	// ReadFile reads a file. It defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)

	mu    sync.Mutex
	files map[string]*File
}

// NewLoader returns a Loader that reads from the local filesystem.
func NewLoader() *Loader {
	return &Loader{ReadFile: os.ReadFile}
}

// Load returns the parsed file at path.
func (l *Loader) Load(ctx context.Context, path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", path)
	}

	l.mu.Lock()
	if f, ok := l.files[abs]; ok {
		l.mu.Unlock()
		return f, nil
	}
	l.mu.Unlock()

	read := l.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	src, err := read(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", abs)
	}
	f, err := ParseSource(ctx, abs, src)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.files == nil {
		l.files = make(map[string]*File)
	}
	// Another goroutine may have won the race; keep the first result so
	// declarations stay pointer-stable.
	if existing, ok := l.files[abs]; ok {
		return existing, nil
	}
	l.files[abs] = f
	return f, nil
}

// Resolve maps a relative module specifier imported from the file at
// from to a file path. It tries the specifier as written, with a .ts
// extension, and as a directory index. Package specifiers (not starting
// with '.') are not resolved.
func (l *Loader) Resolve(from, specifier string) (string, bool) {
	if !strings.HasPrefix(specifier, ".") {
		return "", false
	}
	base := filepath.Join(filepath.Dir(from), specifier)
	candidates := []string{base + ".ts", base, filepath.Join(base, "index.ts")}
	if strings.HasSuffix(base, ".js") {
		candidates = append([]string{strings.TrimSuffix(base, ".js") + ".ts"}, candidates...)
	}
	for _, c := range candidates {
		if l.exists(c) {
			return c, true
		}
	}
	return "", false
}

func (l *Loader) exists(path string) bool {
	if filepath.Ext(path) != ".ts" {
		return false
	}
	l.mu.Lock()
	_, cached := l.files[path]
	l.mu.Unlock()
	if cached {
		return true
	}
	read := l.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	_, err := read(path)
	return err == nil
}
