package store

import (
	"path/filepath"
	"testing"

	"aardd/internal/descriptor"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "state.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestQueryRoundTripAcrossReopen(t *testing.T) {
	s, path := openTestStore(t)
	if q, err := s.LoadQuery(); err != nil || q != "" {
		t.Fatalf("fresh store query=%q err=%v", q, err)
	}
	if err := s.SaveQuery("first"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveQuery("naïve café"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	q, err := s2.LoadQuery()
	if err != nil {
		t.Fatal(err)
	}
	if q != "naïve café" {
		t.Fatalf("expected restored query, got %q", q)
	}
}

func TestAppState_Missing(t *testing.T) {
	s, _ := openTestStore(t)
	v, ok, err := s.GetAppState("nope")
	if err != nil || ok || v != "" {
		t.Fatalf("got %q ok=%v err=%v", v, ok, err)
	}
}

func TestSourcesRoundTripPreservesOrder(t *testing.T) {
	s, _ := openTestStore(t)
	in := []SourceRecord{
		{ID: "z", Path: "/z.dictdb", Label: "Z", Active: true},
		{ID: "a", Path: "/a.dictdb", Label: "A", Active: false},
	}
	if err := s.SaveSources(in); err != nil {
		t.Fatal(err)
	}
	out, err := s.LoadSources()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("unexpected sources %+v", out)
	}
	if err := s.SaveSources(in[:1]); err != nil {
		t.Fatal(err)
	}
	out, _ = s.LoadSources()
	if len(out) != 1 {
		t.Fatalf("save must replace, got %+v", out)
	}
}

func TestBlobListsAreSeparate(t *testing.T) {
	s, _ := openTestStore(t)
	b1, _ := descriptor.NewBlobDescriptor("/content/s/one?blob=1")
	b2, _ := descriptor.NewBlobDescriptor("/content/s/two?blob=2#f")
	if err := s.SaveBlobs(ListBookmarks, []*descriptor.BlobDescriptor{b1, b2}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveBlobs(ListHistory, []*descriptor.BlobDescriptor{b2}); err != nil {
		t.Fatal(err)
	}
	bm, err := s.LoadBlobs(ListBookmarks)
	if err != nil {
		t.Fatal(err)
	}
	if len(bm) != 2 || bm[0].ContentURL != b1.ContentURL || bm[1].Fragment != "f" || bm[1].BlobID != 2 {
		t.Fatalf("unexpected bookmarks %+v", bm)
	}
	if !bm[0].CreatedAt.Equal(b1.CreatedAt) {
		t.Fatalf("created time not preserved: %v vs %v", bm[0].CreatedAt, b1.CreatedAt)
	}
	hist, _ := s.LoadBlobs(ListHistory)
	if len(hist) != 1 || hist[0].Key != "two" {
		t.Fatalf("unexpected history %+v", hist)
	}
}
