// Package metadata reads the per-item JSON records the extraction stage
// writes under the processed directory. Records are immutable artifacts;
// this core only lists them, except for Save which exists for seeding and
// local development.
package metadata

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"disinfowatch/internal/common"
	"disinfowatch/internal/fsjson"
	"disinfowatch/internal/inference"
)

// Record is one extracted item. Extractors attach fields beyond these; only
// what the loop consumes is modeled, unknown fields are ignored on read.
type Record struct {
	Type          string   `json:"type"`
	Title         string   `json:"title,omitempty"`
	Text          string   `json:"text"`
	NamedEntities []string `json:"named_entities,omitempty"`
	URL           string   `json:"url,omitempty"`
	SourceDomain  string   `json:"source_domain,omitempty"`
	WordCount     int      `json:"word_count,omitempty"`

	// Result is present when an inference job wrote its verdict back into
	// the record; the inference log remains the authoritative source.
	Result *inference.Result `json:"result,omitempty"`
}

// Item pairs a record with its identity: the path it is stored under.
type Item struct {
	Identity string
	Record   Record
}

// Store lists and writes metadata records below a processed directory.
type Store struct {
	dir string
	log *slog.Logger
}

// NewStore returns a store rooted at the processed directory.
func NewStore(log *slog.Logger, dir string) *Store {
	return &Store{dir: dir, log: log}
}

// List walks the processed tree and returns every readable record in
// deterministic path order. Unreadable or malformed files are logged and
// skipped so one bad record cannot abort a queue build. A missing directory
// is an empty listing.
func (s *Store) List() ([]Item, error) {
	var items []Item
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.dir {
				return filepath.SkipAll
			}
			s.log.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		data, err := os.ReadFile(path) // #nosec G304 - walking the configured data dir
		if err != nil {
			s.log.Warn("skipping unreadable record", "path", path, "err", err)
			return nil
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			s.log.Warn("skipping malformed record", "path", path, "err", err)
			return nil
		}
		items = append(items, Item{Identity: path, Record: rec})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.dir, err)
	}
	return items, nil
}

// Save writes a record into the type-appropriate subdirectory under a fresh
// UUID filename and returns its identity.
func (s *Store) Save(rec Record) (string, error) {
	path := filepath.Join(s.dir, subdirFor(rec.Type), uuid.NewString()+".json")
	if err := fsjson.WriteObjectAtomic(path, rec); err != nil {
		return "", err
	}
	return path, nil
}

func subdirFor(recordType string) string {
	switch recordType {
	case common.TypeArticle:
		return "articles"
	case common.TypeTweet:
		return "tweets"
	case common.TypeVideoTranscript:
		return "transcripts"
	}
	return "misc"
}
