package constraint

// DefaultMaxHits caps the number of records one search returns.
const DefaultMaxHits = 250

// Request is a complete search query over a set of entity sets.
type Request struct {
	EntitySetIDs []string `json:"entitySetIds"`
	Start        int      `json:"start"`
	MaxHits      int      `json:"maxHits"`
	Constraints  []Group  `json:"constraints"`
}

// EntitySetSearch queries a single entity set; the dashboard runs it count-only.
type EntitySetSearch struct {
	SearchTerm string `json:"searchTerm"`
	Start      int    `json:"start"`
	MaxHits    int    `json:"maxHits"`
	Fuzzy      bool   `json:"fuzzy"`
}

// Results is a page of search hits. Hits are opaque property maps keyed by FQN.
type Results struct {
	NumHits int              `json:"numHits"`
	Hits    []map[string]any `json:"hits"`
}
