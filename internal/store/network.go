package store

import "io"

// NetworkRetriever satisfies the Retriever contract over an
// io.ReaderAt handle to a networked/object-store-backed blob — e.g.
// an http.File or an object-store SDK's ranged-GET wrapper. It is
// deliberately minimal: the concrete network/HPSS client is an
// external collaborator per spec §1, so this type only owns the
// logical layout (a metadata region followed by one contiguous region
// per level) and the progressive-offset bookkeeping.
type NetworkRetriever struct {
	Metadata io.ReaderAt
	Levels   []io.ReaderAt // one handle per level, already scoped to that level's byte range
	offsets  []uint64
}

func (r *NetworkRetriever) LoadMetadata() ([]byte, error) {
	// Callers that don't know the metadata length up front should wrap
	// Metadata in a handle that reports its own size (e.g. an
	// *os.File or an http range response with Content-Length); here we
	// simply drain it via a growing buffer.
	const chunk = 4096
	var blob []byte
	for off := int64(0); ; off += chunk {
		buf := make([]byte, chunk)
		n, err := r.Metadata.ReadAt(buf, off)
		blob = append(blob, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ioErr("reading metadata over network", err)
		}
		if n == 0 {
			break
		}
	}
	return blob, nil
}

func (r *NetworkRetriever) RetrieveLevelComponents(sizes []uint64) ([][]byte, error) {
	if r.offsets == nil {
		r.offsets = make([]uint64, len(r.Levels))
	}
	out := make([][]byte, len(sizes))
	for level, size := range sizes {
		buf := make([]byte, size)
		if size > 0 {
			if _, err := r.Levels[level].ReadAt(buf, int64(r.offsets[level])); err != nil && err != io.EOF {
				return nil, ioErr("reading level range over network", err)
			}
		}
		out[level] = buf
		r.offsets[level] += size
	}
	return out, nil
}
