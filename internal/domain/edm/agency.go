package edm

// AgencyEntitySet ties an agency's vehicle-records entity set to its display name.
type AgencyEntitySet struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// AgencyEntitySets is an ordered, read-only registry of agency entity sets.
type AgencyEntitySets struct {
	items []AgencyEntitySet
}

// NewAgencyEntitySets copies items, keeping their order. Entries without an id are skipped.
func NewAgencyEntitySets(items []AgencyEntitySet) AgencyEntitySets {
	out := make([]AgencyEntitySet, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		out = append(out, it)
	}
	return AgencyEntitySets{items: out}
}

// Lookup returns the entity set id of the first agency whose display name equals name exactly.
func (a AgencyEntitySets) Lookup(name string) (string, bool) {
	for _, it := range a.items {
		if it.Name == name {
			return it.ID, true
		}
	}
	return "", false
}

// IDs returns every agency entity set id in registry order.
func (a AgencyEntitySets) IDs() []string {
	ids := make([]string, len(a.items))
	for i, it := range a.items {
		ids[i] = it.ID
	}
	return ids
}

// All returns a copy of the registry entries.
func (a AgencyEntitySets) All() []AgencyEntitySet {
	out := make([]AgencyEntitySet, len(a.items))
	copy(out, a.items)
	return out
}

// Len returns the number of agencies.
func (a AgencyEntitySets) Len() int { return len(a.items) }
