package entities

// Metadata carries free-form data copied from other documents, such as the
// context of the message a spell was cast from.
type Metadata map[string]interface{}

// Clone returns a shallow copy
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	c := make(Metadata, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
