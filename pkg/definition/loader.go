package definition

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Load reads one flow definition from r.
func Load(r io.Reader) (*Flow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read definition")
	}

	var flow Flow
	if err := yaml.Unmarshal(data, &flow); err != nil {
		return nil, errors.Wrap(err, "unable to parse definition")
	}

	return &flow, nil
}

// LoadFile reads one flow definition from path.
func LoadFile(path string) (*Flow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open definition %s", path)
	}
	defer file.Close()

	flow, err := Load(file)
	if err != nil {
		return nil, errors.Wrapf(err, "definition %s", path)
	}

	return flow, nil
}

// LoadDir reads every .yaml/.yml file directly under dir, parsing files
// concurrently, and returns the flows sorted by name so the result is
// deterministic regardless of parse order.
func LoadDir(dir string) ([]*Flow, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read definitions directory %s", dir)
	}

	var (
		mu    sync.Mutex
		flows []*Flow
	)

	grp := errgroup.Group{}
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		grp.Go(func() error {
			flow, loadErr := LoadFile(path)
			if loadErr != nil {
				return loadErr
			}

			mu.Lock()
			flows = append(flows, flow)
			mu.Unlock()

			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Name < flows[j].Name
	})

	return flows, nil
}
