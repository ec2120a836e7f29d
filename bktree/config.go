package bktree

// FileConfig holds query parameters for a file-backed tree.
type FileConfig struct {
	// VerifyChecksum recomputes the SHA-256 digest when opening.
	// Skipping it accepts unverified data.
	VerifyChecksum bool
	// Metric used for queries. Must match the metric the tree was built
	// with; the file does not record it.
	Metric Metric[uint64]
	// StackHint pre-sizes the traversal stack.
	StackHint int
}

// DefaultFileConfig returns the default configuration: verified reads
// under Hamming distance.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		VerifyChecksum: true,
		Metric:         HammingMetric{},
		StackHint:      64,
	}
}

// OrDefault returns DefaultFileConfig if c is nil, otherwise normalizes c.
func (c *FileConfig) OrDefault() *FileConfig {
	if c == nil {
		return DefaultFileConfig()
	}
	if c.Metric == nil {
		c.Metric = HammingMetric{}
	}
	if c.StackHint <= 0 {
		c.StackHint = 64
	}
	return c
}
