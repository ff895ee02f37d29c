// Package cff reads and writes CITATION.cff files while preserving the
// key order the maintainers chose, and validates them with cffconvert.
package cff

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/cffauthor/pkg/constants"
	"github.com/agentstation/cffauthor/pkg/errors"
	"github.com/agentstation/cffauthor/pkg/identity"
)

// Document is an in-memory CITATION.cff file. All mappings are held as
// ordered slices so a round trip never reorders the maintainers' keys.
type Document struct {
	path string
	root yaml.MapSlice
}

// Load reads and parses the CFF file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	root, err := parse(data)
	if err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &Document{path: path, root: root}, nil
}

// parse decodes CFF YAML into an ordered mapping.
func parse(data []byte) (yaml.MapSlice, error) {
	var root yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &root, yaml.UseOrderedMap()); err != nil {
		return nil, err
	}
	return root, nil
}

// Path returns the file path the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// Clone returns an independent deep copy. The reconciler mutates the clone
// and keeps the original for the before/after report.
func (d *Document) Clone() *Document {
	return &Document{path: d.path, root: cloneValue(d.root).(yaml.MapSlice)}
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case yaml.MapSlice:
		out := make(yaml.MapSlice, len(val))
		for i, item := range val {
			out[i] = yaml.MapItem{Key: item.Key, Value: cloneValue(item.Value)}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// value returns the top-level value for key, if present.
func (d *Document) value(key string) (any, bool) {
	for _, item := range d.root {
		if name, ok := item.Key.(string); ok && name == key {
			return item.Value, true
		}
	}
	return nil, false
}

// setValue replaces or appends a top-level key.
func (d *Document) setValue(key string, v any) {
	for i, item := range d.root {
		if name, ok := item.Key.(string); ok && name == key {
			d.root[i].Value = v
			return
		}
	}
	d.root = append(d.root, yaml.MapItem{Key: key, Value: v})
}

// authorList returns the raw authors sequence, or nil when absent.
func (d *Document) authorList() []any {
	v, ok := d.value("authors")
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

// Authors parses the authors section into records. Records that cannot be
// parsed produce an error each and are skipped; the rest are returned, so
// one malformed entry never hides the others.
func (d *Document) Authors() ([]identity.Author, []error) {
	var authors []identity.Author
	var errs []error
	for i, raw := range d.authorList() {
		fields, ok := toFields(raw)
		if !ok {
			errs = append(errs, errors.NewConstructionError("cff author", raw,
				fmt.Sprintf("authors[%d] is not a mapping", i)))
			continue
		}
		author, err := identity.AuthorFromFields(fields)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		authors = append(authors, author)
	}
	return authors, errs
}

// toFields flattens a decoded author mapping to a plain map for parsing.
func toFields(raw any) (map[string]any, bool) {
	switch val := raw.(type) {
	case yaml.MapSlice:
		fields := make(map[string]any, len(val))
		for _, item := range val {
			if key, ok := item.Key.(string); ok {
				fields[key] = item.Value
			}
		}
		return fields, true
	case map[string]any:
		return val, true
	default:
		return nil, false
	}
}

// AppendAuthor adds an author record at the end of the authors section,
// creating the section when the file has none.
func (d *Document) AppendAuthor(a identity.Author) {
	d.setValue("authors", append(d.authorList(), authorFields(a)))
}

// authorFields renders an author as an ordered CFF mapping. Name fields
// come first, then email, orcid, and alias, each only when set.
func authorFields(a identity.Author) yaml.MapSlice {
	var fields yaml.MapSlice
	if a.Type == identity.TypePerson {
		fields = append(fields,
			yaml.MapItem{Key: "given-names", Value: a.GivenNames},
			yaml.MapItem{Key: "family-names", Value: a.FamilyNames},
		)
	} else {
		fields = append(fields, yaml.MapItem{Key: "name", Value: a.Name})
	}
	if a.Email != "" {
		fields = append(fields, yaml.MapItem{Key: "email", Value: a.Email})
	}
	if a.ORCID != "" {
		fields = append(fields, yaml.MapItem{Key: "orcid", Value: a.ORCID})
	}
	if a.Alias != "" {
		fields = append(fields, yaml.MapItem{Key: "alias", Value: a.Alias})
	}
	return fields
}

// Bytes serializes the document back to YAML in its original key order.
func (d *Document) Bytes() ([]byte, error) {
	data, err := yaml.Marshal(d.root)
	if err != nil {
		return nil, errors.WrapParse("yaml", d.path, err)
	}
	return data, nil
}

// Save writes the document back to its file.
func (d *Document) Save() error {
	return d.SaveTo(d.path)
}

// SaveTo writes the document to path.
func (d *Document) SaveTo(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
