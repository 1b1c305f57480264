package session

import (
	"context"
	"testing"
	"time"

	"github.com/motifhq/motif/pkg/pipeline"
)

func TestDeepLinkRoundTrip(t *testing.T) {
	link := DeepLink{
		Text: "HAPPY BIRTHDAY ANNA",
		Descriptor: pipeline.Descriptor{
			TemplateID: "t1",
			Color:      "c0392b",
			Frame:      "double",
			Tilt:       -15,
			Texture:    "dots",
		},
	}
	got, err := DecodeDeepLink(link.Encode())
	if err != nil {
		t.Fatalf("DecodeDeepLink: %v", err)
	}
	if got != link {
		t.Errorf("round trip: got %+v, want %+v", got, link)
	}
}

func TestDeepLinkRequiresText(t *testing.T) {
	if _, err := DecodeDeepLink("template=t1"); err == nil {
		t.Error("deep link without text accepted")
	}
}

func TestSessionSaveDeduplicates(t *testing.T) {
	sess, err := New("HI", DefaultTTL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d := pipeline.Descriptor{TemplateID: "t1", Frame: "single"}
	sess.Save(d)
	sess.Save(d)
	sess.Save(pipeline.Descriptor{TemplateID: "t2", Frame: "single"})
	if len(sess.Saved) != 2 {
		t.Errorf("saved = %d, want 2", len(sess.Saved))
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	sess, _ := New("HI", DefaultTTL)
	if err := s.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, sess.ID)
	if err != nil || got == nil || got.Text != "HI" {
		t.Fatalf("Get = (%+v, %v)", got, err)
	}
	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.Get(ctx, sess.ID); got != nil {
		t.Error("deleted session still present")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	sess, _ := New("HI", -time.Minute)
	s.Set(ctx, sess)
	if got, _ := s.Get(ctx, sess.ID); got != nil {
		t.Error("expired session returned")
	}
}

func TestFileStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	sess, _ := New("HELLO", DefaultTTL)
	sess.Save(pipeline.Descriptor{TemplateID: "t1", Frame: "split"})
	if err := s.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("Get = (%v, %v)", got, err)
	}
	if got.Text != "HELLO" || len(got.Saved) != 1 || got.Saved[0].TemplateID != "t1" {
		t.Errorf("restored session differs: %+v", got)
	}

	if got, _ := s.Get(ctx, "missing"); got != nil {
		t.Error("missing session returned")
	}
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	expired, _ := New("OLD", -time.Minute)
	live, _ := New("NEW", DefaultTTL)
	s.Set(ctx, expired)
	s.Set(ctx, live)

	if err := s.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if got, _ := s.Get(ctx, live.ID); got == nil {
		t.Error("live session removed by cleanup")
	}
	if _, err := NewFileStore(s.Path()); err != nil {
		t.Fatalf("reopen: %v", err)
	}
}
