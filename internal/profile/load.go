package profile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// LoadCandidates reads a json file with a list of company profiles produced
// by an ingestion collaborator. The file holds either a bare array or an
// object with an "items" key.
func LoadCandidates(path string) (*Candidates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates file %q: %w", path, err)
	}

	var items []*CompanyProfile
	if err := json.Unmarshal(data, &items); err == nil {
		return &Candidates{Items: items}, nil
	}

	var wrapped struct {
		Items []*CompanyProfile `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parsing candidates file %q: %w", path, err)
	}

	return &Candidates{Items: wrapped.Items}, nil
}

// FromRecords decodes generic record maps, as handed over by ingestion
// collaborators, into a candidate list. Keys follow the same snake_case
// names as the json file format.
func FromRecords(records []map[string]any) (*Candidates, error) {
	var items []*CompanyProfile

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &items,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(records); err != nil {
		return nil, fmt.Errorf("decoding candidate records: %w", err)
	}

	return &Candidates{Items: items}, nil
}

// LoadOrganization reads the target organization profile from a json file.
func LoadOrganization(path string) (*OrganizationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading organization file %q: %w", path, err)
	}

	var org OrganizationProfile
	if err := json.Unmarshal(data, &org); err != nil {
		return nil, fmt.Errorf("parsing organization file %q: %w", path, err)
	}

	if err := org.Validate(); err != nil {
		return nil, err
	}

	return &org, nil
}
