// Package issuers loads the issuer keyword map used to tag articles with a
// ticker symbol, from a YAML file or a SQLite store.
package issuers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pevans/banknews/classify"
)

// ErrInvalidFormat is returned when an issuer file is not a mapping of
// symbols to keywords.
var ErrInvalidFormat = errors.New("issuer file must map symbols to keyword lists")

// Source loads the issuer keyword map for one run.
type Source interface {
	Load(ctx context.Context) (*classify.IssuerMap, error)
}

// FileSource reads issuers from a YAML file of the form
//
//	BBRI:
//	  - bri
//	  - bank rakyat indonesia
//	BMRI: mandiri
//
// Symbols keep the order they appear in the file.
type FileSource struct {
	Path string
}

// Load reads and parses the file.
func (f FileSource) Load(ctx context.Context) (*classify.IssuerMap, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read issuer file: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse issuer file: %w", err)
	}
	return m, nil
}

// Parse decodes issuer YAML. A mapping in Go loses key order, so the
// document is walked as a node tree instead.
func Parse(data []byte) (*classify.IssuerMap, error) {
	m := classify.NewIssuerMap()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return m, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrInvalidFormat
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d", ErrInvalidFormat, key.Line)
		}

		var keywords []string
		switch value.Kind {
		case yaml.ScalarNode:
			keywords = []string{value.Value}
		case yaml.SequenceNode:
			if err := value.Decode(&keywords); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, key.Value, err)
			}
		default:
			return nil, fmt.Errorf("%w: %s at line %d", ErrInvalidFormat, key.Value, value.Line)
		}

		m.Add(key.Value, keywords...)
	}

	return m, nil
}

// Marshal renders m as issuer YAML, preserving symbol order.
func Marshal(m *classify.IssuerMap) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, symbol := range m.Symbols() {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, kw := range m.Keywords(symbol) {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: kw})
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: symbol},
			seq,
		)
	}
	return yaml.Marshal(root)
}
