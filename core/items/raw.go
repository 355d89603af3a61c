package items

// RawItem is one item as delivered by the feed, before normalization.
type RawItem struct {
	ID       string `json:"id"`
	BaseType string `json:"basetype"`
	Name     string `json:"name,omitempty"`
	Rarity   Rarity `json:"rarity,omitempty"`
	// Note is the seller's free-text note, which may embed a price tag.
	Note string `json:"note,omitempty"`
	// Properties are "Name: value" lines such as "Quality: +20%".
	Properties []string `json:"properties,omitempty"`
	// Mods holds the affix texts partitioned by provenance.
	Mods map[Provenance][]string `json:"mods,omitempty"`
}
