// package shader composes the WGSL programs from modular source files. Each
// module may declare dependencies with `// #import name` lines (the leading
// comment keeps raw files valid WGSL before composition); the composer
// concatenates modules depth-first in dependency order with deduplication.
package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// ErrUnresolved marks a missing import module. Wrapped errors carry the
// module name; test with errors.Is.
var ErrUnresolved = errors.New("shader module not found")

const importPrefix = "// #import "

// Composer resolves `// #import module` directives over a filename→source
// module map.
type Composer struct {
	modules map[string]string
}

// NewComposer returns an empty composer; Register adds modules directly.
// Tests use this to compose synthetic module graphs.
func NewComposer() *Composer {
	return &Composer{modules: make(map[string]string)}
}

// FromFS loads every .wgsl file under root in fsys. The module name is the
// path relative to root, minus the extension, with separators normalized to
// "::" (e.g. figures/sphere.wgsl becomes figures::sphere).
//
// Parameters:
//   - fsys: the filesystem holding the shader tree (embedded in production)
//   - root: the shader root directory within fsys ("." for the whole FS)
//
// Returns:
//   - *Composer: the loaded composer
//   - error: a wrapped walk or read error
func FromFS(fsys fs.FS, root string) (*Composer, error) {
	c := NewComposer()
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to read shader directory %s: %w", p, err)
		}
		if d.IsDir() || path.Ext(p) != ".wgsl" {
			return nil
		}
		source, readErr := fs.ReadFile(fsys, p)
		if readErr != nil {
			return fmt.Errorf("failed to read shader %s: %w", p, readErr)
		}
		c.Register(moduleName(root, p), string(source))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// moduleName maps root/figures/sphere.wgsl to figures::sphere.
func moduleName(root, p string) string {
	rel := strings.TrimPrefix(p, root)
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return strings.ReplaceAll(rel, "/", "::")
}

// Register adds or replaces a module.
func (c *Composer) Register(name, source string) {
	c.modules[name] = source
}

// Compose resolves all imports of the entry module recursively and returns
// the single composed source. Imports emit before the importing module's
// body; each module is emitted exactly once; cycles are broken by the
// visited set.
//
// Parameters:
//   - entryModule: the top-level program module name
//
// Returns:
//   - string: the composed WGSL compilation unit
//   - error: ErrUnresolved (wrapped with the module name) on a missing import
func (c *Composer) Compose(entryModule string) (string, error) {
	var output strings.Builder
	visited := make(map[string]bool)
	if err := c.resolve(entryModule, &output, visited); err != nil {
		return "", err
	}
	return output.String(), nil
}

func (c *Composer) resolve(name string, output *strings.Builder, visited map[string]bool) error {
	if visited[name] {
		return nil
	}
	visited[name] = true

	source, ok := c.modules[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnresolved, name)
	}

	// Resolve imports first, then emit non-import lines — single pass.
	var body strings.Builder
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if importName, found := strings.CutPrefix(trimmed, importPrefix); found {
			if err := c.resolve(strings.TrimSpace(importName), output, visited); err != nil {
				return err
			}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	output.WriteString(body.String())
	output.WriteByte('\n')

	return nil
}
