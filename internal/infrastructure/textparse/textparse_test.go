package textparse

import (
	"errors"
	"testing"

	"assetwatch/internal/domain/model"
)

func TestPrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9,800,000円", "9800000"},
		{"¥1,234.56", "1234.56"},
		{"$123.45", "123.45"},
		{"  17,880 円/g ", "17880"},
		{"38,510", "38510"},
		{"152.43", "152.43"},
		{"前日比 +120円 (0.85%)", "120"},
	}

	for _, c := range cases {
		got, err := Price(c.in)
		if err != nil {
			t.Fatalf("Price(%q) failed: %v", c.in, err)
		}
		if got.String() != c.want {
			t.Errorf("Price(%q) = %s, want %s", c.in, got.String(), c.want)
		}
	}
}

func TestPriceNoNumber(t *testing.T) {
	for _, in := range []string{"", "---", "価格を取得できません", "<span></span>"} {
		_, err := Price(in)
		if err == nil {
			t.Fatalf("Price(%q) should fail", in)
		}
		if !errors.Is(err, model.ErrParseFailure) {
			t.Errorf("Price(%q) error = %v, want ErrParseFailure", in, err)
		}
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+1.52%", "1.52"},
		{"-0.3％", "-0.3"},
		{"2%", "2"},
	}

	for _, c := range cases {
		got, err := Percent(c.in)
		if err != nil {
			t.Fatalf("Percent(%q) failed: %v", c.in, err)
		}
		if got.String() != c.want {
			t.Errorf("Percent(%q) = %s, want %s", c.in, got.String(), c.want)
		}
	}

	if _, err := Percent("1.52"); !errors.Is(err, model.ErrParseFailure) {
		t.Errorf("Percent without %% should fail with ErrParseFailure, got %v", err)
	}
}

func TestClip(t *testing.T) {
	long := make([]rune, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'x')
	}
	got := Clip(string(long), 120)
	if len([]rune(got)) != 123 {
		t.Errorf("Clip length = %d, want 123", len([]rune(got)))
	}
	if got := Clip("a  b\n c", 120); got != "a b c" {
		t.Errorf("Clip should collapse whitespace, got %q", got)
	}
}
