package model

// Profile is a single extracted person record: a name paired with the
// text the page offered about that person.
//
// Design decision: Profiles are immutable once created and never
// deduplicated. The same person mentioned on three pages yields three
// records. Merging profiles would require identity resolution, which is
// a product decision we deliberately do not make here.
type Profile struct {
	// Name is the person's name as it appeared in the page text.
	Name string `json:"name"`

	// About is a short description of the person extracted from the
	// surrounding text.
	About string `json:"about"`
}

// IsValid reports whether the profile carries both a name and about text.
// The extraction prompt asks the model to only return complete records,
// but responses are not trusted blindly.
func (p Profile) IsValid() bool {
	return p.Name != "" && p.About != ""
}

// Directory is the accumulated, append-only list of profiles for a run.
// It is the exact shape persisted to the snapshot file:
//
//	{"profiles": [{"name": "...", "about": "..."}, ...]}
type Directory struct {
	// Profiles holds every extracted record in extraction order.
	Profiles []Profile `json:"profiles"`
}

// NewDirectory creates an empty Directory.
//
// The Profiles slice is allocated eagerly so an empty directory
// serializes as {"profiles": []} rather than {"profiles": null}.
func NewDirectory() *Directory {
	return &Directory{Profiles: make([]Profile, 0)}
}

// Append extends the directory with records in the order given.
// Invalid records (missing name or about) are dropped; everything else
// is kept verbatim, duplicates included.
func (d *Directory) Append(profiles []Profile) {
	for _, p := range profiles {
		if p.IsValid() {
			d.Profiles = append(d.Profiles, p)
		}
	}
}

// Len returns the number of accumulated profiles.
func (d *Directory) Len() int {
	return len(d.Profiles)
}
