package golden

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/san-kum/plantsim/internal/plant"
)

const ext = ".json"

// Store keeps golden datasets as <name>.json files in one directory.
type Store struct {
	baseDir string
	indent  bool
}

func NewStore(baseDir string, indent bool) *Store {
	return &Store{baseDir: baseDir, indent: indent}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.baseDir, name+ext)
}

// Entry describes one stored dataset.
type Entry struct {
	Name         string
	Params       plant.Params
	SampleTime   float64
	Trajectories int
	Samples      int
	Modified     time.Time
}

func (s *Store) Save(name string, d *Dataset) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	return WriteFile(s.Path(name), d, s.indent)
}

func (s *Store) Load(name string) (*Dataset, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return ReadFile(s.Path(name))
}

// List returns the stored datasets sorted by name. Files that fail to decode
// are skipped.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		ds, err := s.Load(name)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		entry := Entry{
			Name:         name,
			Params:       ds.Params,
			SampleTime:   ds.SampleTime,
			Trajectories: len(ds.Trajectories),
			Modified:     info.ModTime(),
		}
		for _, t := range ds.Trajectories {
			entry.Samples += t.Len()
		}
		out = append(out, entry)
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid dataset name %q", plant.ErrInvalidParameter, name)
	}
	return nil
}
