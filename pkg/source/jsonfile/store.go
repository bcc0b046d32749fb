// Package jsonfile reads source collections from an export directory.
//
// Each collection is one file named after it: <collection>.json, .yaml or
// .yml. A file holds either an array of objects carrying their key in "id",
// "_id" or "__id__", or an object keyed by document id.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/apperrors"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/jsonutil"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
)

var extensions = []string{".json", ".yaml", ".yml"}

var idKeys = []string{"id", "_id", "__id__"}

type Store struct {
	dir    string
	logger *zap.Logger
}

var _ source.Store = (*Store)(nil)

func New(dir string, logger *zap.Logger) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open export directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("export path %q is not a directory", dir)
	}
	return &Store{dir: dir, logger: logger.Named("jsonfile")}, nil
}

func (s *Store) Fetch(ctx context.Context, collection string) ([]source.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.locate(collection)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw any
	if filepath.Ext(path) == ".json" {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	docs, err := toDocuments(raw)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", collection, err)
	}

	s.logger.Debug("Loaded collection",
		zap.String("collection", collection),
		zap.String("path", path),
		zap.Int("documents", len(docs)))
	return docs, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) locate(collection string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(s.dir, collection+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("collection %s: %w", collection, apperrors.ErrNotFound)
}

func toDocuments(raw any) ([]source.Document, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		docs := make([]source.Document, 0, len(v))
		for i, item := range v {
			fields, ok := asObject(item)
			if !ok {
				return nil, fmt.Errorf("element %d is not an object", i)
			}
			id, ok := documentID(fields)
			if !ok {
				return nil, fmt.Errorf("element %d has no id", i)
			}
			docs = append(docs, source.Document{ID: id, Fields: fields})
		}
		return docs, nil
	default:
		obj, ok := asObject(v)
		if !ok {
			return nil, fmt.Errorf("expected an array or object of documents, got %T", raw)
		}
		ids := make([]string, 0, len(obj))
		for id := range obj {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		docs := make([]source.Document, 0, len(ids))
		for _, id := range ids {
			fields, ok := asObject(obj[id])
			if !ok {
				return nil, fmt.Errorf("document %s is not an object", id)
			}
			docs = append(docs, source.Document{ID: id, Fields: fields})
		}
		return docs, nil
	}
}

func documentID(fields map[string]any) (string, bool) {
	for _, key := range idKeys {
		if v, ok := fields[key]; ok {
			if s, ok := jsonutil.FlexibleStringValue(v); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// asObject accepts both decoders' object shapes. yaml.v3 produces
// map[string]any for string keys but map[any]any can appear for
// non-string keys, which are stringified.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
