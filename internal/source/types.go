package source

type (
	// FileID uniquely identifies a source unit within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source unit.
	FileFlags uint8
)

const (
	// FileVirtual indicates the unit was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	FileNormalizedNFC
)

// File is an immutable source unit: the input text plus its line index.
// Translation never mutates a File; every pass produces new text.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source unit.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
