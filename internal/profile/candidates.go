package profile

import (
	"encoding/json"
	"os"
	"strings"
)

// Candidates is the working set of companies under evaluation.
type Candidates struct {
	Items []*CompanyProfile
}

func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Names returns candidate names in list order.
func (c *Candidates) Names() []string {
	names := make([]string, 0, c.Len())
	for _, item := range c.Items {
		names = append(names, item.Name)
	}
	return names
}

// FindByName returns the first candidate with the given name or nil.
func (c *Candidates) FindByName(name string) *CompanyProfile {
	for _, item := range c.Items {
		if item.Name == name {
			return item
		}
	}
	return nil
}

// Dedupe removes candidates whose normalized company name was already seen,
// keeping the first occurrence. Ingestion from several keyword searches
// routinely returns the same company more than once.
func (c *Candidates) Dedupe() {
	seen := make(map[string]struct{}, len(c.Items))
	unique := make([]*CompanyProfile, 0, len(c.Items))

	for _, item := range c.Items {
		key := strings.ToLower(strings.TrimSpace(item.Name))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
	}

	c.Items = unique
}

// DumpToTmpFile writes the candidate list to a temporary json file and
// returns its name.
func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}
