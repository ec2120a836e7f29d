package bktree

// KeyQuery binds the stored key type to the query type callers pass to Add
// and Find, and knows how to convert and compare between the two. ToQuery
// must be a cheap view, not a copy of any substance.
type KeyQuery[K, Q any] interface {
	ToKey(q Q) K
	ToQuery(k K) Q
	Eq(k K, q Q) bool
}

// U64Key indexes 64-bit integer keys queried by the same type.
type U64Key struct{}

func (U64Key) ToKey(q uint64) uint64   { return q }
func (U64Key) ToQuery(k uint64) uint64 { return k }
func (U64Key) Eq(k, q uint64) bool     { return k == q }

// StringKey indexes string keys queried by strings.
type StringKey struct{}

func (StringKey) ToKey(q string) string   { return q }
func (StringKey) ToQuery(k string) string { return k }
func (StringKey) Eq(k, q string) bool     { return k == q }
