package domain

// Reference is an entry of a project or accounting lookup list.
type Reference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReferenceList is an ordered lookup list of references.
type ReferenceList []Reference

// Lookup returns the display name for id.
func (l ReferenceList) Lookup(id string) (string, bool) {
	for _, r := range l {
		if r.ID == id {
			return r.Name, true
		}
	}
	return "", false
}
