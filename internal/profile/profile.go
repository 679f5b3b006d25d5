package profile

import (
	"errors"
	"fmt"
	"strings"
)

// FounderProfile holds everything the scorers need to know about a single
// founder. Records are created by ingestion and treated as read-only after
// that.
type FounderProfile struct {
	Name                string `json:"name,omitempty"`
	Title               string `json:"title,omitempty"`
	Experience          string `json:"experience,omitempty"`
	Education           string `json:"education,omitempty"`
	Honors              string `json:"honors,omitempty"`
	LinkedinConnections int    `json:"linkedin_connections,omitempty"`
	Endorsements        int    `json:"endorsements,omitempty"`
}

// CompanyProfile describes a candidate company and owns its founder list for
// the duration of a scoring run.
type CompanyProfile struct {
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Industry    string            `json:"industry,omitempty"`
	Location    string            `json:"location,omitempty"`
	FoundedYear int               `json:"founded_year,omitempty"`
	Founders    []*FounderProfile `json:"founders,omitempty"`
}

// Holding is a single company in the organization's current portfolio.
// Description and Industry are optional; the conflict analyzer falls back to
// the name when they are missing.
type Holding struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Industry    string `json:"industry,omitempty"`
}

// OrganizationProfile describes the target organization's investment criteria
// and current holdings.
type OrganizationProfile struct {
	Name             string     `json:"name,omitempty"`
	InvestmentThesis string     `json:"investment_thesis,omitempty"`
	Industries       []string   `json:"industries,omitempty"`
	Stages           []string   `json:"stages,omitempty"`
	Locations        []string   `json:"locations,omitempty"`
	Portfolio        []*Holding `json:"portfolio,omitempty"`
}

// Validate reports whether the candidate carries the identity fields required
// for scoring. A candidate without a name cannot be ranked deterministically.
func (c *CompanyProfile) Validate() error {
	if c == nil {
		return errors.New("candidate is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("candidate name is required")
	}
	for i, f := range c.Founders {
		if f == nil {
			return fmt.Errorf("founder %d is nil", i)
		}
	}
	return nil
}

// Validate checks that the organization profile is usable as a scoring target.
func (o *OrganizationProfile) Validate() error {
	if o == nil {
		return errors.New("organization profile is required")
	}
	if strings.TrimSpace(o.Name) == "" {
		return errors.New("organization name is required")
	}
	return nil
}

// Text assembles the candidate's free text for similarity encoding. Founder
// text is limited to the first two founders and 200 runes each to keep the
// encoder input bounded.
func (c *CompanyProfile) Text() string {
	parts := make([]string, 0, 4)

	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	if c.Industry != "" {
		parts = append(parts, c.Industry)
	}

	founders := c.Founders
	if len(founders) > 2 {
		founders = founders[:2]
	}
	for _, f := range founders {
		if f.Experience != "" {
			exp := []rune(f.Experience)
			if len(exp) > 200 {
				exp = exp[:200]
			}
			parts = append(parts, string(exp))
		}
		if f.Title != "" {
			parts = append(parts, f.Title)
		}
	}

	return strings.Join(parts, " ")
}

// ThesisText assembles the organization's free text for similarity encoding.
// Focus areas are limited to 5 and holdings to 10, mirroring the bounds used
// for candidate text.
func (o *OrganizationProfile) ThesisText() string {
	parts := make([]string, 0, 4)

	if o.InvestmentThesis != "" {
		parts = append(parts, o.InvestmentThesis)
	}

	industries := o.Industries
	if len(industries) > 5 {
		industries = industries[:5]
	}
	parts = append(parts, industries...)

	holdings := o.Portfolio
	if len(holdings) > 10 {
		holdings = holdings[:10]
	}
	for _, h := range holdings {
		if h != nil && h.Name != "" {
			parts = append(parts, h.Name)
		}
	}

	return strings.Join(parts, " ")
}

// Text assembles the holding's text for conflict similarity. The name is
// always present so two holdings never collapse to an empty string.
func (h *Holding) Text() string {
	parts := []string{h.Name}
	if h.Description != "" {
		parts = append(parts, h.Description)
	}
	if h.Industry != "" {
		parts = append(parts, h.Industry)
	}
	return strings.Join(parts, " ")
}
