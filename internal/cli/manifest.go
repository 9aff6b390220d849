package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/procmux"
	"github.com/giantswarm/procmux/internal/textstream"
)

// Redirect values accepted for stdout and stderr. Any other value is a file
// path, resolved against the manifest's directory.
const (
	redirectPipe    = "pipe"
	redirectDiscard = "discard"
)

// Manifest is the document read by the run command.
type Manifest struct {
	// Encoding is the default encoding for piped output.
	Encoding  string        `yaml:"encoding"`
	Processes []ProcessSpec `yaml:"processes"`
}

// ProcessSpec describes one process of a manifest.
type ProcessSpec struct {
	Name     string            `yaml:"name"`
	Command  string            `yaml:"command"`
	Args     []string          `yaml:"args"`
	Dir      string            `yaml:"dir"`
	Env      map[string]string `yaml:"env"`
	Encoding string            `yaml:"encoding"`
	// Stdout and Stderr default to "pipe".
	Stdout   string `yaml:"stdout"`
	Stderr   string `yaml:"stderr"`
	Detached bool   `yaml:"detached"`
	PIDFile  string `yaml:"pidFile"`
}

// LoadManifest reads and validates a manifest. Relative paths inside it are
// resolved against the manifest's directory and environment values are
// expanded.
func LoadManifest(path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var m Manifest
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	baseDir := filepath.Dir(absPath)
	for i := range m.Processes {
		m.Processes[i].resolve(baseDir)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return &m, nil
}

// Validate reports every problem in the manifest.
func (m *Manifest) Validate() error {
	var errs []error
	if m.Encoding != "" {
		if _, err := textstream.Lookup(m.Encoding); err != nil {
			errs = append(errs, fmt.Errorf("encoding: %w", err))
		}
	}
	if len(m.Processes) == 0 {
		errs = append(errs, errors.New("no processes defined"))
	}
	seen := make(map[string]bool, len(m.Processes))
	for i, p := range m.Processes {
		field := fmt.Sprintf("processes[%d]", i)
		switch {
		case p.Name == "":
			errs = append(errs, fmt.Errorf("%s.name: must not be empty", field))
		case seen[p.Name]:
			errs = append(errs, fmt.Errorf("%s.name: duplicate name %q", field, p.Name))
		}
		seen[p.Name] = true
		if p.Command == "" {
			errs = append(errs, fmt.Errorf("%s.command: must not be empty", field))
		}
		if p.Encoding != "" {
			if _, err := textstream.Lookup(p.Encoding); err != nil {
				errs = append(errs, fmt.Errorf("%s.encoding: %w", field, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (p *ProcessSpec) resolve(baseDir string) {
	if p.Stdout == "" {
		p.Stdout = redirectPipe
	}
	if p.Stderr == "" {
		p.Stderr = redirectPipe
	}
	p.Stdout = resolveRedirect(baseDir, p.Stdout)
	p.Stderr = resolveRedirect(baseDir, p.Stderr)
	if p.Dir != "" {
		p.Dir = resolvePath(baseDir, p.Dir)
	}
	if p.PIDFile != "" {
		p.PIDFile = resolvePath(baseDir, p.PIDFile)
	}
}

func resolveRedirect(baseDir, value string) string {
	if value == redirectPipe || value == redirectDiscard {
		return value
	}
	return resolvePath(baseDir, value)
}

func resolvePath(baseDir, path string) string {
	path = os.ExpandEnv(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

// environ returns the extra environment as sorted KEY=value entries.
func (p *ProcessSpec) environ() []string {
	env := make([]string, 0, len(p.Env))
	for k, v := range p.Env {
		env = append(env, k+"="+os.ExpandEnv(v))
	}
	slices.Sort(env)
	return env
}

// spawnOptions translates p into procmux options.
func (p *ProcessSpec) spawnOptions() []procmux.SpawnOption {
	var opts []procmux.SpawnOption
	switch p.Stdout {
	case redirectPipe:
		opts = append(opts, procmux.WithStdoutPipe())
	case redirectDiscard:
	default:
		opts = append(opts, procmux.WithStdoutFile(p.Stdout))
	}
	switch p.Stderr {
	case redirectPipe:
		opts = append(opts, procmux.WithStderrPipe())
	case redirectDiscard:
	default:
		opts = append(opts, procmux.WithStderrFile(p.Stderr))
	}
	if p.Dir != "" {
		opts = append(opts, procmux.WithDir(p.Dir))
	}
	if env := p.environ(); len(env) > 0 {
		opts = append(opts, procmux.WithEnv(env...))
	}
	if p.Encoding != "" {
		opts = append(opts, procmux.WithEncoding(p.Encoding))
	}
	if p.Detached {
		opts = append(opts, procmux.WithDetached())
	}
	if p.PIDFile != "" {
		opts = append(opts, procmux.WithPIDFile(p.PIDFile))
	}
	return opts
}

// label is the output prefix for one stream of the process.
func (p *ProcessSpec) label(stream string, width int) string {
	name := p.Name
	if stream == "stderr" {
		name += "!"
	}
	return name + strings.Repeat(" ", max(0, width-len(name)))
}
