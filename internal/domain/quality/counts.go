package quality

// Count is the number of reads in one labelled bucket.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AgencyCount is the number of reads an agency contributed over a window.
type AgencyCount struct {
	AgencyID string `json:"agencyId"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

// Agency is a row of the agencies entity set.
type Agency struct {
	ID   string
	Name string
}
