package protocol

import (
	"errors"
	"testing"
)

func TestDecodeSnapshotPreservesKeyOrder(t *testing.T) {
	payload := []byte(`{"zz":{"id":"zz","name":"Yard","picture":"AAA"},"aa":{"id":"aa","name":"Door","picture":""}}`)
	snap, err := DecodeSnapshot(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %#v", snap.Sources)
	}
	if snap.Sources[0].ID != "zz" || snap.Sources[1].ID != "aa" {
		t.Fatalf("expected hub order zz, aa; got %#v", snap.Sources)
	}
	if snap.Sources[0].Picture != "AAA" || snap.Sources[0].Name != "Yard" {
		t.Fatalf("unexpected first source %#v", snap.Sources[0])
	}
}

func TestDecodeSnapshotFallsBackToKeyForID(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"k1":{"name":"Cam"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Sources) != 1 || snap.Sources[0].ID != "k1" {
		t.Fatalf("expected id from key, got %#v", snap.Sources)
	}
}

func TestDecodeSnapshotSkipsNonObjectEntries(t *testing.T) {
	// The hub sometimes broadcasts a single removed entry instead of the map.
	snap, err := DecodeSnapshot([]byte(`{"name":"Cam","picture":"","id":"x"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Sources) != 0 || snap.Skipped != 3 {
		t.Fatalf("expected all entries skipped, got %#v", snap)
	}
}

func TestDecodeSnapshotEmptyObject(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Sources) != 0 {
		t.Fatalf("expected no sources, got %#v", snap.Sources)
	}
}

func TestDecodeSnapshotRejectsNonObject(t *testing.T) {
	for _, input := range []string{`null`, `[]`, `"x"`, ``} {
		if _, err := DecodeSnapshot([]byte(input)); !errors.Is(err, ErrUnexpectedPayload) {
			t.Fatalf("expected unexpected payload error for %q, got %v", input, err)
		}
	}
}

func TestDecodeChurnEvents(t *testing.T) {
	evt, known, err := Decode(EventSourceConnected, []byte(`{"cam_id":"s1","cam_name":"Lab"}`))
	if err != nil || !known {
		t.Fatalf("expected known event, got %v (%v)", known, err)
	}
	joined, ok := evt.(SourceJoined)
	if !ok || joined.ID != "s1" || joined.Name != "Lab" {
		t.Fatalf("unexpected event %#v", evt)
	}

	evt, _, err = Decode(EventSourceLeft, []byte(`{"cam_id":"s1","cam_name":"Lab"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left, ok := evt.(SourceLeft); !ok || left.Name != "Lab" {
		t.Fatalf("unexpected event %#v", evt)
	}

	if _, _, err := Decode(EventSourceLeft, []byte(`[1]`)); !errors.Is(err, ErrUnexpectedPayload) {
		t.Fatalf("expected payload error, got %v", err)
	}
}

func TestDecodeUnknownEvent(t *testing.T) {
	evt, known, err := Decode("something_else", nil)
	if known || evt != nil || err != nil {
		t.Fatalf("expected unknown event to be ignored, got %#v %v %v", evt, known, err)
	}
}

func TestNoticeTexts(t *testing.T) {
	if got := JoinedNotice("Lab"); got != "New source connected: Lab" {
		t.Fatalf("unexpected joined notice %q", got)
	}
	if got := LeftNotice("Lab"); got != "Source disconnected: Lab" {
		t.Fatalf("unexpected left notice %q", got)
	}
}
