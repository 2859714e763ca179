// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ani-report/pkg/types"
)

// indexKey is the mapping key for row labels when the index has no name.
const indexKey = "index"

// writeYAML writes the table as a sequence of mappings, one per row, with
// keys in column order. NaN values encode as .nan.
func writeYAML(w io.Writer, t *types.Table, opts Options) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for i, row := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		if opts.ShowIndex {
			key := t.IndexName
			if key == "" {
				key = indexKey
			}
			if err := addPair(m, key, t.Label(i)); err != nil {
				return err
			}
		}
		for j, v := range row {
			if err := addPair(m, t.Columns[j], v); err != nil {
				return err
			}
		}
		doc.Content = append(doc.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

func addPair(m *yaml.Node, key string, v any) error {
	k := &yaml.Node{}
	k.SetString(key)
	val := &yaml.Node{}
	if err := val.Encode(v); err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	m.Content = append(m.Content, k, val)
	return nil
}
