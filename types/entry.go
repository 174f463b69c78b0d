package types

import "slices"

// Moonster is one collectible creature as it appears in an evolution chain
// or in the capture and comparison lists.
type Moonster struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	ID    int    `json:"id"`
}

// Condition describes what turns one stage of a chain into the next.
// Conditions are ordered like the chain but are not index-paired with it.
type Condition struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Trigger string `json:"trigger"`
	Details string `json:"details"`
}

/*
EvolutionRecord is the value stored in the cache for one entity id.

Chain is ordered earliest stage first. Conditions keep the order they were
produced in; the cache never reorders or pairs them.
*/
type EvolutionRecord struct {
	Chain      []Moonster  `json:"chain"`
	Conditions []Condition `json:"conditions"`
}

// Clone returns a copy that shares no slices with r.
func (r EvolutionRecord) Clone() EvolutionRecord {
	return EvolutionRecord{
		Chain:      slices.Clone(r.Chain),
		Conditions: slices.Clone(r.Conditions),
	}
}

// Find returns the chain member with the given id.
func (r EvolutionRecord) Find(id int) (Moonster, bool) {
	for _, m := range r.Chain {
		if m.ID == id {
			return m, true
		}
	}
	return Moonster{}, false
}
