package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCID(t *testing.T) {
	if err := ValidateCID("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"); err != nil {
		t.Fatalf("valid cid rejected: %v", err)
	}
	if err := ValidateCID(""); err == nil {
		t.Fatal("empty cid accepted")
	}
	long := strings.Repeat("b", MaxCIDLen+1)
	err := ValidateCID(long)
	if err == nil {
		t.Fatal("oversized cid accepted")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "cid" {
		t.Fatalf("expected cid ValidationError, got %#v", err)
	}
	// boundary: exactly MaxCIDLen is fine
	if err := ValidateCID(strings.Repeat("b", MaxCIDLen)); err != nil {
		t.Fatalf("boundary cid rejected: %v", err)
	}
}

func TestValidateTags(t *testing.T) {
	if err := ValidateTags([]string{"solana", "defi"}); err != nil {
		t.Fatalf("valid tags rejected: %v", err)
	}
	if err := ValidateTags(nil); err != nil {
		t.Fatalf("nil tags rejected: %v", err)
	}
	many := make([]string, MaxTags+1)
	for i := range many {
		many[i] = "t"
	}
	if err := ValidateTags(many); err == nil {
		t.Fatal("oversized tag count accepted")
	}
	err := ValidateTags([]string{strings.Repeat("x", MaxTagLen+1)})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "tags" {
		t.Fatalf("expected tags ValidationError, got %#v", err)
	}
	if err := ValidateTags([]string{strings.Repeat("x", MaxTagLen)}); err != nil {
		t.Fatalf("boundary tag rejected: %v", err)
	}
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("connection refused")
	var err error = &SubmissionError{Address: "addr", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("SubmissionError does not unwrap")
	}
	err = &FetchError{CID: "c1", Err: ErrNotFound}
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("FetchError does not unwrap")
	}
	err = &FundingError{PublicAddress: "pk", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("FundingError does not unwrap")
	}
}
