package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Party is the political affiliation of a politician.
type Party string

const (
	PartyDemocrat    Party = "Democrat"
	PartyRepublican  Party = "Republican"
	PartyIndependent Party = "Independent"
)

// ParseParty accepts full names or single-letter codes, case-insensitive.
func ParseParty(v string) (Party, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "d", "dem", "democrat", "democratic":
		return PartyDemocrat, nil
	case "r", "rep", "republican":
		return PartyRepublican, nil
	case "i", "ind", "independent":
		return PartyIndependent, nil
	}
	return "", fmt.Errorf("unknown party %q", v)
}

// Code returns the single-letter code used in compact labels.
func (p Party) Code() string {
	switch p {
	case PartyDemocrat:
		return "D"
	case PartyRepublican:
		return "R"
	case PartyIndependent:
		return "I"
	}
	return "?"
}

// Valid reports whether p is one of the canonical party names.
func (p Party) Valid() bool {
	switch p {
	case PartyDemocrat, PartyRepublican, PartyIndependent:
		return true
	}
	return false
}

func (p Party) String() string { return string(p) }

// UnmarshalJSON normalises either representation to the canonical name.
func (p *Party) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode party: %w", err)
	}
	parsed, err := ParseParty(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Chamber is the legislative chamber a politician sits in.
type Chamber string

const (
	ChamberHouse  Chamber = "House"
	ChamberSenate Chamber = "Senate"
)

// ParseChamber is case-insensitive.
func ParseChamber(v string) (Chamber, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "house", "rep", "representative":
		return ChamberHouse, nil
	case "senate", "sen", "senator":
		return ChamberSenate, nil
	}
	return "", fmt.Errorf("unknown chamber %q", v)
}
