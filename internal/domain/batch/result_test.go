package batch

import (
	"errors"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK("sku-9")
	if r.Status() != StatusOK || r.SKU() != "sku-9" || r.Err() != nil {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestNewError(t *testing.T) {
	cause := errors.New("boom")
	r := NewError("", cause)
	if r.Status() != StatusError {
		t.Fatal("expected error status")
	}
	if !errors.Is(r.Err(), cause) {
		t.Fatal("cause not preserved")
	}
}
