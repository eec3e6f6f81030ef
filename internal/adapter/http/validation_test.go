package http

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestHex32Validation(t *testing.T) {
	type P struct {
		CreatorID string `json:"creator_id" validate:"hex32"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{CreatorID: strings.Repeat("a", 32)}); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}
	for _, s := range []string{
		"",
		strings.Repeat("A", 32),
		"deadbeef",
		strings.Repeat("g", 32),
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x",
	} {
		err := cv.Validate(P{CreatorID: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		// reported under the json name
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "creator_id", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestDecimalMoneyValidation(t *testing.T) {
	type P struct {
		Budget decimal.Decimal `json:"budget" validate:"required,gt=0,dec2"`
	}
	cv := NewValidator()

	for _, s := range []string{"1000", "0.01", "12.5", "99999.99"} {
		if err := cv.Validate(P{Budget: decimal.RequireFromString(s)}); err != nil {
			t.Fatalf("expected %s valid, got %v", s, err)
		}
	}
	tests := []struct {
		in  string
		msg string
	}{
		{"0", "is required"},
		{"-5", "greater than 0"},
		{"10.005", "at most 2 decimal places"},
	}
	for _, tt := range tests {
		err := cv.Validate(P{Budget: decimal.RequireFromString(tt.in)})
		if err == nil {
			t.Fatalf("expected error for %s", tt.in)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "budget", tt.msg) {
			t.Fatalf("%s: want %q, got %+v", tt.in, tt.msg, fe)
		}
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Title  string `json:"title"          validate:"required"`
		Days   int    `json:"estimated_days" validate:"gte=1"`
		Rating int    `json:"rating"         validate:"lte=5"`
		Method string `json:"method"         validate:"oneof=pix bank_transfer"`
		Reason string `json:"reason"         validate:"max=3"`
	}
	fe := ToFieldErrors(NewValidator().Validate(P{Days: 0, Rating: 6, Method: "cheque", Reason: "toolong"}))

	for _, want := range []struct{ field, msg string }{
		{"title", "is required"},
		{"estimated_days", "greater than or equal to 1"},
		{"rating", "less than or equal to 5"},
		{"method", "one of: pix bank_transfer"},
		{"reason", "at most 3 characters"},
	} {
		if !containsFieldMsg(fe, want.field, want.msg) {
			t.Fatalf("missing %q for %s: %+v", want.msg, want.field, fe)
		}
	}
}

func TestCategoryMapValidation(t *testing.T) {
	cv := NewValidator()
	ok := submitReviewReq{Rating: 5, Categories: map[string]int{"quality": 5, "communication": 1}}
	if err := cv.Validate(ok); err != nil {
		t.Fatalf("valid categories: %v", err)
	}
	bad := submitReviewReq{Rating: 5, Categories: map[string]int{"quality": 9}}
	if err := cv.Validate(bad); err == nil {
		t.Fatal("expected error for out-of-range category")
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 || fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe)
	}
}
