package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"corvid/internal/compilation"
	"corvid/internal/diag"
	"corvid/internal/metadata"
)

// SourceExt is the extension of source files collected from [sources] directories.
const SourceExt = ".cv"

var (
	// ErrCompilationSectionMissing indicates that [compilation] is missing.
	ErrCompilationSectionMissing = errors.New("missing [compilation]")
	// ErrNameMissing indicates that [compilation].name is missing or blank.
	ErrNameMissing = errors.New("missing [compilation].name")
	// ErrInvalidValue wraps every malformed field value.
	ErrInvalidValue = errors.New("invalid value")
	// ErrReferencePathMissing indicates a [[references]] entry without a path.
	ErrReferencePathMissing = errors.New("missing [[references]].path")
)

// Manifest is a loaded corvid.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML layout.
type Config struct {
	Compilation CompilationConfig `toml:"compilation"`
	// Diagnostics maps ids ("CMP4472") to suppress|info|warn|error|default.
	Diagnostics map[string]string `toml:"diagnostics"`
	References  []ReferenceConfig `toml:"references"`
	// Sources are directories (relative to the root) scanned for .cv files; default ".".
	Sources []string `toml:"sources"`
}

type CompilationConfig struct {
	Name         string   `toml:"name"`
	Output       string   `toml:"output"`
	Main         string   `toml:"main"`
	WarningLevel *int     `toml:"warning_level"`
	Warnings     string   `toml:"warnings"`
	Features     []string `toml:"features"`
	Usings       []string `toml:"usings"`
	Concurrent   *bool    `toml:"concurrent"`
	Jobs         int      `toml:"jobs"`
	Identity     string   `toml:"identity"`
	Version      string   `toml:"version"`
}

type ReferenceConfig struct {
	Path    string   `toml:"path"`
	Aliases []string `toml:"aliases"`
}

// LoadManifest finds corvid.toml above startDir and loads it. ok is false when there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes and validates one manifest file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("compilation") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrCompilationSectionMissing)
	}
	if !meta.IsDefined("compilation", "name") || strings.TrimSpace(cfg.Compilation.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: %w: unknown key %s", path, ErrInvalidValue, undecoded[0])
	}
	for i, r := range cfg.References {
		if strings.TrimSpace(r.Path) == "" {
			return Config{}, fmt.Errorf("%s: reference #%d: %w", path, i+1, ErrReferencePathMissing)
		}
	}
	if _, err := cfg.Options(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Options converts the manifest into compilation options on top of the defaults.
func (cfg Config) Options() (compilation.Options, error) {
	c := cfg.Compilation
	opts := compilation.DefaultOptions()

	kind, err := compilation.ParseOutputKind(c.Output)
	if err != nil {
		return opts, fmt.Errorf("[compilation].output: %w: %w", ErrInvalidValue, err)
	}
	opts = opts.WithOutputKind(kind).WithMainTypeName(strings.TrimSpace(c.Main))

	if c.WarningLevel != nil {
		if *c.WarningLevel < 0 || *c.WarningLevel > compilation.MaxWarningLevel {
			return opts, fmt.Errorf("[compilation].warning_level: %w: %d", ErrInvalidValue, *c.WarningLevel)
		}
		opts = opts.WithWarningLevel(uint8(*c.WarningLevel))
	}
	general, err := diag.ParseAction(c.Warnings)
	if err != nil {
		return opts, fmt.Errorf("[compilation].warnings: %w: %w", ErrInvalidValue, err)
	}
	opts = opts.WithGeneralDiagnosticOption(general)

	if len(cfg.Diagnostics) > 0 {
		specific := make(map[diag.Code]diag.Action, len(cfg.Diagnostics))
		for id, value := range cfg.Diagnostics {
			code, ok := diag.ParseCode(id)
			if !ok {
				return opts, fmt.Errorf("[diagnostics]: %w: unknown id %q", ErrInvalidValue, id)
			}
			a, err := diag.ParseAction(value)
			if err != nil {
				return opts, fmt.Errorf("[diagnostics].%s: %w: %w", id, ErrInvalidValue, err)
			}
			specific[code] = a
		}
		opts = opts.WithSpecificDiagnosticOptions(specific)
	}

	cmp, ok := metadata.ComparerByName(c.Identity)
	if !ok {
		return opts, fmt.Errorf("[compilation].identity: %w: %q (expected strict|lenient)", ErrInvalidValue, c.Identity)
	}
	opts = opts.WithIdentityComparer(cmp).
		WithFeatures(c.Features...).
		WithUsings(c.Usings...).
		WithJobs(c.Jobs)
	if c.Concurrent != nil {
		opts = opts.WithConcurrentBuild(*c.Concurrent)
	}
	if v := strings.TrimSpace(c.Version); v != "" {
		opts = opts.WithVersion(v)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return opts, nil
}

// References builds metadata references; relative paths are resolved against the project root.
func (m *Manifest) References() []*metadata.Reference {
	out := make([]*metadata.Reference, 0, len(m.Config.References))
	for _, r := range m.Config.References {
		path := r.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.Root, filepath.FromSlash(path))
		}
		ref := metadata.FromFile(path)
		if len(r.Aliases) > 0 {
			ref = ref.WithAliases(r.Aliases...)
		}
		out = append(out, ref)
	}
	return out
}

// SourceFiles lists the .cv files under the configured source directories, sorted.
func (m *Manifest) SourceFiles() ([]string, error) {
	dirs := m.Config.Sources
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	var files []string
	for _, d := range dirs {
		found, err := CollectSources(filepath.Join(m.Root, filepath.FromSlash(d)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Path, err)
		}
		files = append(files, found...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// CollectSources walks dir (or returns the file itself) and returns .cv paths in lexical order.
// Hidden directories are skipped.
func CollectSources(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(dir) != SourceExt {
			return nil, fmt.Errorf("%s is not a %s file", dir, SourceExt)
		}
		return []string{dir}, nil
	}
	var out []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == SourceExt {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}
