package entities

import "strconv"

// RawSource references a publication the record appears in.
type RawSource struct {
	SourceID   int  `json:"sourceId"`
	PageNumber *int `json:"pageNumber,omitempty"`
}

// RawFeature is one feature block of a raw monster record.
type RawFeature struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description"`
}

// RawItemSpell is a spell granted by a magic item.
type RawItemSpell struct {
	SpellID int    `json:"spellId"`
	Name    string `json:"name"`
	Level   int    `json:"level"`
	Charges int    `json:"charges,omitempty"`
}

// RawRecord is a third-party record as returned by the proxy.
// Item and monster payloads share the shape; unused fields stay empty.
type RawRecord struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type,omitempty"`
	FilterType  string         `json:"filterType,omitempty"`
	Description string         `json:"description,omitempty"`
	Sources     []RawSource    `json:"sources,omitempty"`
	IsHomebrew  bool           `json:"isHomebrew"`
	BundleSize  int            `json:"bundleSize,omitempty"`
	Weight      float64        `json:"weight,omitempty"`
	Rarity      string         `json:"rarity,omitempty"`
	CanAttune   bool           `json:"canAttune,omitempty"`
	Magic       bool           `json:"magic,omitempty"`
	AvatarURL   string         `json:"avatarUrl,omitempty"`
	Features    []RawFeature   `json:"features,omitempty"`
	ItemSpells  []RawItemSpell `json:"itemSpells,omitempty"`
}

// DefinitionID is the external id as a string, the form explicit id lists use.
func (r RawRecord) DefinitionID() string {
	return strconv.FormatInt(r.ID, 10)
}

// HasSource reports whether any of the record's sources is in allowed.
func (r RawRecord) HasSource(allowed map[int]struct{}) bool {
	for _, source := range r.Sources {
		if _, ok := allowed[source.SourceID]; ok {
			return true
		}
	}
	return false
}
