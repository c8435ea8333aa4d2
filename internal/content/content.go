// Package content defines the opaque serialized form of an editor document.
package content

// Content is an immutable snapshot of the editable surface's full document.
// The zero value is the empty document.
type Content struct {
	data string
}

// Deserialize wraps a serialized document.
func Deserialize(s string) Content {
	return Content{data: s}
}

// Serialize returns the serialized document.
func (c Content) Serialize() string {
	return c.data
}

// String implements fmt.Stringer.
func (c Content) String() string {
	return c.data
}

// Equal reports whether two snapshots hold the same document.
func (c Content) Equal(other Content) bool {
	return c.data == other.data
}

// IsEmpty reports whether the document is empty.
func (c Content) IsEmpty() bool {
	return c.data == ""
}

// Len returns the size of the serialized document in bytes.
func (c Content) Len() int {
	return len(c.data)
}
