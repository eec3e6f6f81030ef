package review

import (
	"errors"
	"testing"
)

func TestValidRating(t *testing.T) {
	for r := -1; r <= 7; r++ {
		want := r >= 1 && r <= 5
		if got := ValidRating(r); got != want {
			t.Fatalf("ValidRating(%d) = %v, want %v", r, got, want)
		}
	}
}

func TestValidateCategories(t *testing.T) {
	if err := ValidateCategories(nil); err != nil {
		t.Fatalf("nil categories: %v", err)
	}
	if err := ValidateCategories(map[string]int{"communication": 5, "quality": 4}); err != nil {
		t.Fatalf("valid categories: %v", err)
	}
	if err := ValidateCategories(map[string]int{"quality": 6}); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("out of range err = %v", err)
	}
	if err := ValidateCategories(map[string]int{"": 3}); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("empty name err = %v", err)
	}
}
