// Package store implements the Writer/Retriever contract of spec
// §4.7/§6: persistence of metadata and per-level bitplane streams,
// and progressive, offset-based retrieval of a byte-exact prefix of
// each level's stream. Grounded on original_source's
// include/Writer/HPSSFileWriter.hpp (the "merge small objects" chunk
// loop) and the simpler ConcatLevelFileWriter referenced alongside
// it, restructured around os.File/io idioms the way the teacher
// writes codestream segments byte-by-byte.
package store

import (
	"fmt"

	"github.com/lxAltria/Multiprecision-data-refactoring/errs"
)

// Writer persists metadata and level components (spec §4.7).
type Writer interface {
	// WriteLevelComponents writes the per-level bitplane streams
	// (levelComponents[level][bitplane]) and returns, per level, the
	// "merged count" list: how many consecutive bitplane streams
	// landed in each storage object.
	WriteLevelComponents(levelComponents [][][]byte) (mergedCount [][]uint32, err error)
	WriteMetadata(blob []byte) error
}

// Retriever loads metadata and retrieves progressive byte ranges
// per level (spec §4.7).
type Retriever interface {
	LoadMetadata() ([]byte, error)
	// RetrieveLevelComponents returns, per level, a contiguous buffer
	// of exactly sizes[level] bytes starting at the level's current
	// internal offset, then advances that offset by sizes[level].
	RetrieveLevelComponents(sizes []uint64) ([][]byte, error)
}

func ioErr(context string, err error) error {
	return fmt.Errorf("store: %s: %v: %w", context, err, errs.ErrIoError)
}
