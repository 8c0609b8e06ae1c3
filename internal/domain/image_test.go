package domain

import (
	"encoding/base64"
	"testing"
)

func TestClassifyImageRef_RemoteURL(t *testing.T) {
	for _, ref := range []string{"http://example.com/a.png", "https://cdn.example.com/img"} {
		got, err := ClassifyImageRef(ref)
		if err != nil {
			t.Fatalf("classify %q: %v", ref, err)
		}
		if got.Kind != ImageRemoteURL || got.URL != ref {
			t.Fatalf("classify %q: got %+v", ref, got)
		}
	}
}

func TestClassifyImageRef_DataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47})
	got, err := ClassifyImageRef("data:image/png;base64," + payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != ImageDataURI || got.Subtype != "png" {
		t.Fatalf("got %+v", got)
	}
	if got.ContentType() != "image/png" {
		t.Fatalf("content type: %s", got.ContentType())
	}
	if len(got.Data) != 4 {
		t.Fatalf("payload not decoded: %d bytes", len(got.Data))
	}
}

func TestClassifyImageRef_RawBase64(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))
	got, err := ClassifyImageRef(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != ImageRawBase64 || got.Subtype != "jpeg" {
		t.Fatalf("got %+v", got)
	}
	if got.ContentType() != "image/jpeg" {
		t.Fatalf("content type: %s", got.ContentType())
	}
}

func TestClassifyImageRef_Invalid(t *testing.T) {
	for _, ref := range []string{"not an image!", "ftp://example.com/a.png", "data:image/png;base64,%%%"} {
		if _, err := ClassifyImageRef(ref); err == nil {
			t.Errorf("expected error for %q", ref)
		}
	}
}

func TestIsImageRef(t *testing.T) {
	if !IsImageRef("https://example.com/x.jpg") {
		t.Error("remote url rejected")
	}
	if !IsImageRef("data:image/gif;base64,R0lGOD==") {
		t.Error("data uri rejected")
	}
	if !IsImageRef("QUJD") {
		t.Error("bare base64 rejected")
	}
	if IsImageRef("hello world") {
		t.Error("spaces accepted")
	}
}
