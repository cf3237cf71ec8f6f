package store

import (
	"bytes"
	"testing"
)

func sampleLevels() [][][]byte {
	return [][][]byte{
		{[]byte("aaaa"), []byte("bb"), []byte("c")},
		{[]byte("11111111"), []byte("22"), []byte("333"), []byte("4")},
	}
}

func TestConcatWriterRetrieverRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := ConcatFileWriter{Dir: dir}
	levels := sampleLevels()
	merged, err := w.WriteLevelComponents(levels)
	if err != nil {
		t.Fatalf("WriteLevelComponents: %v", err)
	}
	for l, m := range merged {
		if len(m) != 1 || int(m[0]) != len(levels[l]) {
			t.Fatalf("level %d: expected a single merged object of %d streams, got %v", l, len(levels[l]), m)
		}
	}
	if err := w.WriteMetadata([]byte("meta-blob")); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}

	r := &ConcatFileRetriever{Dir: dir}
	blob, err := r.LoadMetadata()
	if err != nil || string(blob) != "meta-blob" {
		t.Fatalf("LoadMetadata: %v %q", err, blob)
	}

	level0Want := bytes.Join(levels[0], nil)
	level1Want := bytes.Join(levels[1], nil)

	first, err := r.RetrieveLevelComponents([]uint64{4, 8})
	if err != nil {
		t.Fatalf("RetrieveLevelComponents: %v", err)
	}
	if !bytes.Equal(first[0], level0Want[:4]) || !bytes.Equal(first[1], level1Want[:8]) {
		t.Fatalf("first retrieve mismatch: %q %q", first[0], first[1])
	}

	second, err := r.RetrieveLevelComponents([]uint64{3, 6})
	if err != nil {
		t.Fatalf("RetrieveLevelComponents: %v", err)
	}
	if !bytes.Equal(second[0], level0Want[4:7]) || !bytes.Equal(second[1], level1Want[8:14]) {
		t.Fatalf("second (progressive) retrieve mismatch: %q %q", second[0], second[1])
	}
}

func TestChunkingWriterRetrieverRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := ChunkingFileWriter{Dir: dir, MinObjectSize: 5}
	levels := sampleLevels()
	merged, err := w.WriteLevelComponents(levels)
	if err != nil {
		t.Fatalf("WriteLevelComponents: %v", err)
	}
	// level 0: "aaaa"(4) then "bb"(2) -> 6 >= 5 at j=1 -> object 0 = streams[0:2];
	// then "c"(1) is last -> object 1 = streams[2:3]
	if got := merged[0]; len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Fatalf("level 0 merged counts = %v, want [2 1]", got)
	}
	if err := w.WriteMetadata([]byte("meta")); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}

	r := &ChunkingFileRetriever{Dir: dir, MergedCount: merged}
	level0Want := bytes.Join(levels[0], nil) // "aaaabbc"
	level1Want := bytes.Join(levels[1], nil)

	first, err := r.RetrieveLevelComponents([]uint64{uint64(len(level0Want)), 5})
	if err != nil {
		t.Fatalf("RetrieveLevelComponents: %v", err)
	}
	if !bytes.Equal(first[0], level0Want) {
		t.Fatalf("level 0 full retrieve mismatch: got %q want %q", first[0], level0Want)
	}
	if !bytes.Equal(first[1], level1Want[:5]) {
		t.Fatalf("level 1 partial retrieve mismatch: got %q want %q", first[1], level1Want[:5])
	}

	second, err := r.RetrieveLevelComponents([]uint64{0, uint64(len(level1Want) - 5)})
	if err != nil {
		t.Fatalf("RetrieveLevelComponents: %v", err)
	}
	if !bytes.Equal(second[1], level1Want[5:]) {
		t.Fatalf("level 1 remainder mismatch: got %q want %q", second[1], level1Want[5:])
	}
}
