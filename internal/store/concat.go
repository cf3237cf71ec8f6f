package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConcatFileWriter writes one file per level, the level's K bitplane
// streams concatenated in order (spec §4.7 "concatenating writer"),
// grounded on original_source's ConcatLevelFileWriter.
type ConcatFileWriter struct {
	Dir string
}

func (w ConcatFileWriter) levelPath(level int) string {
	return filepath.Join(w.Dir, fmt.Sprintf("level_%d.bin", level))
}

func (w ConcatFileWriter) WriteLevelComponents(levelComponents [][][]byte) ([][]uint32, error) {
	mergedCount := make([][]uint32, len(levelComponents))
	for level, streams := range levelComponents {
		f, err := os.Create(w.levelPath(level))
		if err != nil {
			return nil, ioErr("creating level file", err)
		}
		for _, s := range streams {
			if _, err := f.Write(s); err != nil {
				f.Close()
				return nil, ioErr("writing level stream", err)
			}
		}
		if err := f.Close(); err != nil {
			return nil, ioErr("closing level file", err)
		}
		mergedCount[level] = []uint32{uint32(len(streams))}
	}
	return mergedCount, nil
}

func (w ConcatFileWriter) WriteMetadata(blob []byte) error {
	if err := os.WriteFile(filepath.Join(w.Dir, "metadata.bin"), blob, 0o644); err != nil {
		return ioErr("writing metadata", err)
	}
	return nil
}

// ConcatFileRetriever reads progressive byte ranges back out of the
// single per-level files ConcatFileWriter produced.
type ConcatFileRetriever struct {
	Dir     string
	offsets []uint64
}

func (r *ConcatFileRetriever) LoadMetadata() ([]byte, error) {
	blob, err := os.ReadFile(filepath.Join(r.Dir, "metadata.bin"))
	if err != nil {
		return nil, ioErr("reading metadata", err)
	}
	return blob, nil
}

func (r *ConcatFileRetriever) RetrieveLevelComponents(sizes []uint64) ([][]byte, error) {
	if r.offsets == nil {
		r.offsets = make([]uint64, len(sizes))
	}
	out := make([][]byte, len(sizes))
	for level, size := range sizes {
		path := filepath.Join(r.Dir, fmt.Sprintf("level_%d.bin", level))
		f, err := os.Open(path)
		if err != nil {
			return nil, ioErr("opening level file", err)
		}
		buf := make([]byte, size)
		if size > 0 {
			if _, err := f.ReadAt(buf, int64(r.offsets[level])); err != nil {
				f.Close()
				return nil, ioErr("reading level range", err)
			}
		}
		f.Close()
		out[level] = buf
		r.offsets[level] += size
	}
	return out, nil
}
