// Package companies loads the company reference table used for display labels
// and entity recognition.
package companies

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Company is one listed company.
type Company struct {
	ID          string `json:"id"`
	ShortName   string `json:"short_name"`   // local-language short name
	EnglishName string `json:"english_name"` // English short name
}

// Header is the dashboard header label for the company.
func (c Company) Header() string {
	name := c.EnglishName
	if name == "" {
		name = c.ShortName
	}
	if name == "" {
		name = c.ID
	}
	return name + " Information"
}

// code accepts the company code as a JSON number or string.
type code string

func (c *code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = code(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("company code must be a number or string: %w", err)
	}
	*c = code(n.String())
	return nil
}

type tableEntry struct {
	Code        code   `json:"公司代號"`
	ShortName   string `json:"公司簡稱"`
	EnglishName string `json:"英文簡稱"`
}

// Directory is an immutable lookup of companies by ID.
type Directory struct {
	byID map[string]Company
	list []Company
}

// Parse reads a JSON array of company table entries. Entries without a code are skipped;
// a repeated code keeps the last entry.
func Parse(r io.Reader) (*Directory, error) {
	var entries []tableEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode company table: %w", err)
	}

	d := &Directory{byID: make(map[string]Company, len(entries))}
	for _, e := range entries {
		if e.Code == "" {
			continue
		}
		d.byID[string(e.Code)] = Company{
			ID:          string(e.Code),
			ShortName:   strings.TrimSpace(e.ShortName),
			EnglishName: strings.TrimSpace(e.EnglishName),
		}
	}

	d.list = make([]Company, 0, len(d.byID))
	for _, c := range d.byID {
		d.list = append(d.list, c)
	}
	sort.Slice(d.list, func(i, j int) bool { return d.list[i].ID < d.list[j].ID })
	return d, nil
}

// Load reads the company table file.
func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open company table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Lookup returns the company with the given ID.
func (d *Directory) Lookup(id string) (Company, bool) {
	c, ok := d.byID[id]
	return c, ok
}

// List returns every company ordered by ID.
func (d *Directory) List() []Company {
	out := make([]Company, len(d.list))
	copy(out, d.list)
	return out
}

// Len returns the number of companies.
func (d *Directory) Len() int {
	return len(d.list)
}
