package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
	"github.com/viorelmirea/provocations-backend/internal/types"
)

// Document is one authored content file: a set of concerns belonging to a
// single content kind.
type Document struct {
	Kind     string          `yaml:"kind"`
	Concerns []types.Concern `yaml:"concerns"`
}

// Index holds the static concern set, keyed by kind and concern id. Content
// is authored outside this service; the index is read-only after Load and is
// used to validate that incoming regeneration requests reference concerns
// that actually exist.
type Index struct {
	log *logger.Logger

	mu       sync.RWMutex
	concerns map[types.ContentKind]map[string]types.Concern
}

func NewIndex(baseLog *logger.Logger) *Index {
	return &Index{
		log:      baseLog.With("service", "ContentIndex"),
		concerns: map[types.ContentKind]map[string]types.Concern{},
	}
}

// Load parses every .yaml/.yml document under dir. Files load concurrently;
// the first parse failure aborts the whole load.
func (idx *Index) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read content dir %s: %w", dir, err)
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		docs []Document
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		g.Go(func() error {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			var doc Document
			if err := yaml.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			mu.Lock()
			docs = append(docs, doc)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, doc := range docs {
		kind, err := types.ParseContentKind(doc.Kind)
		if err != nil {
			return err
		}
		byID := idx.concerns[kind]
		if byID == nil {
			byID = map[string]types.Concern{}
			idx.concerns[kind] = byID
		}
		for _, concern := range doc.Concerns {
			if concern.ID == "" {
				return fmt.Errorf("concern without id in kind %s", kind)
			}
			byID[concern.ID] = concern
		}
	}
	idx.log.Info("Content index loaded",
		"discussions", len(idx.concerns[types.KindDiscussions]),
		"provocations", len(idx.concerns[types.KindProvocations]),
	)
	return nil
}

func (idx *Index) Get(kind types.ContentKind, id string) (types.Concern, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	concern, ok := idx.concerns[kind][id]
	return concern, ok
}

func (idx *Index) Has(kind types.ContentKind, id string) bool {
	_, ok := idx.Get(kind, id)
	return ok
}

func (idx *Index) Len(kind types.ContentKind) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.concerns[kind])
}
