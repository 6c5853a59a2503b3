package domain

import "encoding/json"

// Collection is the ordered set of link records.
// Insertion order is the display and storage order.
type Collection []LinkRecord

// Clone returns an independent copy. The result is never nil.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Index returns the position of the record with the given id, or -1.
func (c Collection) Index(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the record with the given id.
func (c Collection) Find(id string) (LinkRecord, bool) {
	if i := c.Index(id); i >= 0 {
		return c[i], true
	}
	return LinkRecord{}, false
}

// MarshalJSON encodes a nil collection as [] so clients always see an array.
func (c Collection) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]LinkRecord(c))
}
