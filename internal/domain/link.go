package domain

// LinkRecord is a single bookmarked link.
type LinkRecord struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is unique within a collection and never reused.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title string `json:"title"`

	// URL is an absolute http(s) URL. Checked by the caller, stored as given.
	URL string `json:"url"`

	Description string `json:"description,omitempty"`

	// Icon is an optional http(s) image URL.
	Icon string `json:"icon,omitempty"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is set once at creation.
	CreatedAt Timestamp `json:"createdAt"`

	// UpdatedAt is refreshed on every mutation of the record.
	UpdatedAt Timestamp `json:"updatedAt"`
}

// LinkFields holds the caller-supplied content of a new record.
type LinkFields struct {
	Title       string
	URL         string
	Description string
	Icon        string
}

// LinkPatch describes an update. Nil fields keep the existing value.
type LinkPatch struct {
	Title       *string
	URL         *string
	Description *string
	Icon        *string
}

// PatchFrom builds a patch that overwrites every content field,
// which is what a full edit form submits.
func PatchFrom(f LinkFields) LinkPatch {
	return LinkPatch{
		Title:       &f.Title,
		URL:         &f.URL,
		Description: &f.Description,
		Icon:        &f.Icon,
	}
}

// Apply merges the patch over r. Identity and timestamps are left alone.
func (p LinkPatch) Apply(r LinkRecord) LinkRecord {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.URL != nil {
		r.URL = *p.URL
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Icon != nil {
		r.Icon = *p.Icon
	}
	return r
}

// Fields returns the content of r as LinkFields.
func (r LinkRecord) Fields() LinkFields {
	return LinkFields{
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description,
		Icon:        r.Icon,
	}
}
