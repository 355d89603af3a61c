package ingest

import (
	"regexp"
	"strings"

	"stash-pricer/core/items"
	"stash-pricer/core/utils"
)

// Page is one feed delta.
type Page struct {
	NextCursor string        `json:"next_cursor"`
	Changes    []StashChange `json:"stash_changes"`
}

// StashChange is the new content of one stash. An empty Items list means the
// stash was emptied or removed.
type StashChange struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner,omitempty"`
	StashName string          `json:"stash_name,omitempty"`
	League    string          `json:"league,omitempty"`
	Items     []items.RawItem `json:"items"`
}

// Addressable reports whether the change can be recorded for later deletion.
func (c StashChange) Addressable() bool {
	return c.ID != "" && c.Owner != "" && c.StashName != ""
}

// wirePage is the public stash API response.
type wirePage struct {
	NextChangeID string      `json:"next_change_id"`
	Stashes      []wireStash `json:"stashes"`
}

type wireStash struct {
	ID          string     `json:"id"`
	AccountName string     `json:"accountName"`
	Stash       string     `json:"stash"`
	League      string     `json:"league"`
	Items       []wireItem `json:"items"`
}

type wireItem struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	TypeLine      string         `json:"typeLine"`
	BaseType      string         `json:"baseType"`
	FrameType     int            `json:"frameType"`
	Note          string         `json:"note"`
	Properties    []wireProperty `json:"properties"`
	UtilityMods   []string       `json:"utilityMods"`
	ImplicitMods  []string       `json:"implicitMods"`
	ExplicitMods  []string       `json:"explicitMods"`
	CraftedMods   []string       `json:"craftedMods"`
	EnchantMods   []string       `json:"enchantMods"`
	FracturedMods []string       `json:"fracturedMods"`
	VeiledMods    []string       `json:"veiledMods"`
	ScourgeMods   []string       `json:"scourgeMods"`
}

// wireProperty values are [display, style] pairs, e.g. [["+20%", 1]].
type wireProperty struct {
	Name   string  `json:"name"`
	Values [][]any `json:"values"`
}

// markup matches the <<set:MS>> style tags older API versions put in names.
var markup = regexp.MustCompile(`<<[^>]*>>`)

func (w wirePage) toPage() *Page {
	page := &Page{NextCursor: w.NextChangeID, Changes: make([]StashChange, 0, len(w.Stashes))}
	for _, s := range w.Stashes {
		change := StashChange{
			ID:        s.ID,
			Owner:     s.AccountName,
			StashName: s.Stash,
			League:    s.League,
			Items:     make([]items.RawItem, 0, len(s.Items)),
		}
		for _, it := range s.Items {
			change.Items = append(change.Items, it.toRaw())
		}
		page.Changes = append(page.Changes, change)
	}
	return page
}

func (w wireItem) toRaw() items.RawItem {
	base := w.BaseType
	if base == "" {
		base = markup.ReplaceAllString(w.TypeLine, "")
	}
	raw := items.RawItem{
		ID:       w.ID,
		BaseType: base,
		Name:     strings.TrimSpace(markup.ReplaceAllString(w.Name, "")),
		Rarity:   rarityFromFrame(w.FrameType),
		Note:     w.Note,
		Mods:     make(map[items.Provenance][]string),
	}
	for _, p := range w.Properties {
		if line, ok := p.line(); ok {
			raw.Properties = append(raw.Properties, line)
		}
	}
	add := func(p items.Provenance, mods []string) {
		if len(mods) > 0 {
			raw.Mods[p] = mods
		}
	}
	add(items.ProvenanceUtility, w.UtilityMods)
	add(items.ProvenanceImplicit, w.ImplicitMods)
	add(items.ProvenanceExplicit, w.ExplicitMods)
	add(items.ProvenanceCrafted, w.CraftedMods)
	add(items.ProvenanceEnchant, w.EnchantMods)
	add(items.ProvenanceFractured, w.FracturedMods)
	add(items.ProvenanceVeiled, w.VeiledMods)
	add(items.ProvenanceScourge, w.ScourgeMods)
	return raw
}

// line renders "Name: v1, v2". Properties without values are flags such as
// "Corrupted" and carry nothing to parse.
func (p wireProperty) line() (string, bool) {
	values := make([]string, 0, len(p.Values))
	for _, v := range p.Values {
		if len(v) == 0 {
			continue
		}
		if s := utils.ToString(v[0]); s != "" {
			values = append(values, s)
		}
	}
	if p.Name == "" || len(values) == 0 {
		return "", false
	}
	return p.Name + ": " + strings.Join(values, ", "), true
}

func rarityFromFrame(frame int) items.Rarity {
	switch frame {
	case 1:
		return items.RarityMagic
	case 2:
		return items.RarityRare
	case 3:
		return items.RarityUnique
	default:
		return items.RarityNormal
	}
}
