package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// ChunkingFileWriter concatenates bitplane streams per level but
// splits across multiple objects once minObjectSize is reached,
// mirroring original_source's HPSSFileWriter.write_level_components:
// streams accumulate into a running concatenation buffer, and a new
// object starts once the running size hits the minimum (or the last
// stream is reached). File boundaries always fall between streams,
// never mid-stream.
type ChunkingFileWriter struct {
	Dir           string
	MinObjectSize uint32
}

func (w ChunkingFileWriter) objectPath(level, object int) string {
	return filepath.Join(w.Dir, fmt.Sprintf("level_%d_%d.bin", level, object))
}

func (w ChunkingFileWriter) WriteLevelComponents(levelComponents [][][]byte) ([][]uint32, error) {
	mergedCount := make([][]uint32, len(levelComponents))
	for level, streams := range levelComponents {
		var merged []uint32
		object := 0
		concatSize := uint32(0)
		prevIndex := 0
		for j := range streams {
			concatSize += uint32(len(streams[j]))
			if concatSize >= w.MinObjectSize || j == len(streams)-1 {
				f, err := os.Create(w.objectPath(level, object))
				if err != nil {
					return nil, ioErr("creating chunk file", err)
				}
				for k := prevIndex; k <= j; k++ {
					if _, err := f.Write(streams[k]); err != nil {
						f.Close()
						return nil, ioErr("writing chunk stream", err)
					}
				}
				if err := f.Close(); err != nil {
					return nil, ioErr("closing chunk file", err)
				}
				merged = append(merged, uint32(j-prevIndex+1))
				object++
				concatSize = 0
				prevIndex = j + 1
			}
		}
		mergedCount[level] = merged
	}
	return mergedCount, nil
}

func (w ChunkingFileWriter) WriteMetadata(blob []byte) error {
	if err := os.WriteFile(filepath.Join(w.Dir, "metadata.bin"), blob, 0o644); err != nil {
		return ioErr("writing metadata", err)
	}
	return nil
}

// ChunkingFileRetriever reconstructs, per level, the logical
// concatenation of that level's chunk files as a single addressable
// byte range, so the caller can retrieve progressive byte ranges
// without knowing the chunk boundaries.
type ChunkingFileRetriever struct {
	Dir         string
	MergedCount [][]uint32 // from metadata: how many objects per level, and their boundaries are re-derived from file sizes
	offsets     []uint64
}

func (r *ChunkingFileRetriever) LoadMetadata() ([]byte, error) {
	blob, err := os.ReadFile(filepath.Join(r.Dir, "metadata.bin"))
	if err != nil {
		return nil, ioErr("reading metadata", err)
	}
	return blob, nil
}

// objectSizes returns the byte size of every object file for a level.
func (r *ChunkingFileRetriever) objectSizes(level int) ([]int64, error) {
	numObjects := len(r.MergedCount[level])
	sizes := make([]int64, numObjects)
	for o := 0; o < numObjects; o++ {
		path := filepath.Join(r.Dir, fmt.Sprintf("level_%d_%d.bin", level, o))
		fi, err := os.Stat(path)
		if err != nil {
			return nil, ioErr("stat chunk file", err)
		}
		sizes[o] = fi.Size()
	}
	return sizes, nil
}

func (r *ChunkingFileRetriever) RetrieveLevelComponents(sizes []uint64) ([][]byte, error) {
	if r.offsets == nil {
		r.offsets = make([]uint64, len(r.MergedCount))
	}
	out := make([][]byte, len(sizes))
	for level, want := range sizes {
		objSizes, err := r.objectSizes(level)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, want)
		if want > 0 {
			if err := readRange(r.Dir, level, objSizes, r.offsets[level], buf); err != nil {
				return nil, err
			}
		}
		out[level] = buf
		r.offsets[level] += want
	}
	return out, nil
}

// readRange copies [start, start+len(dst)) of a level's logical
// concatenated object stream into dst, opening only the objects that
// overlap the requested range.
func readRange(dir string, level int, objSizes []int64, start uint64, dst []byte) error {
	var base int64
	remaining := dst
	pos := int64(start)
	for o, sz := range objSizes {
		objStart := base
		objEnd := base + sz
		base = objEnd
		if pos >= objEnd || len(remaining) == 0 {
			continue
		}
		if pos < objStart {
			return ioErr("reading chunked range", fmt.Errorf("gap before object %d", o))
		}
		localOff := pos - objStart
		n := sz - localOff
		if int64(len(remaining)) < n {
			n = int64(len(remaining))
		}
		f, err := os.Open(filepath.Join(dir, fmt.Sprintf("level_%d_%d.bin", level, o)))
		if err != nil {
			return ioErr("opening chunk file", err)
		}
		_, err = f.ReadAt(remaining[:n], localOff)
		f.Close()
		if err != nil {
			return ioErr("reading chunk range", err)
		}
		remaining = remaining[n:]
		pos += n
	}
	if len(remaining) != 0 {
		return ioErr("reading chunked range", fmt.Errorf("requested range extends past level %d's stored objects", level))
	}
	return nil
}
