package classifier

import (
	"errors"
	"testing"
	"time"

	"github.com/timmy/docclass/internal/domain"
)

func TestExtractors_Community(t *testing.T) {
	x := NewDefaultExtractors()

	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{name: "office folder", path: "/Round Rock Office/Brushy Creek/Minutes/jan.pdf", want: "Brushy Creek", wantOK: true},
		{name: "association docs", path: "/sites/AssociationDocs/Avery%20Ranch/Budget/", want: "Avery Ranch", wantOK: true},
		{name: "collapses whitespace", path: "/North Austin Office/  Lake   Pointe /x/", want: "Lake Pointe", wantOK: true},
		{name: "case-insensitive", path: "/sites/associationdocs/Teravista/a/", want: "Teravista", wantOK: true},
		{name: "no match", path: "/Shared Documents/General/", wantOK: false},
		{name: "empty", path: "", wantOK: false},
		{name: "blank capture", path: "/sites/AssociationDocs/%20/x/", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := x.Community(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v (value %q)", ok, tt.wantOK, got)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractors_OwnerAccount(t *testing.T) {
	x := NewDefaultExtractors()

	tests := []struct {
		name     string
		filename string
		path     string
		want     string
		wantOK   bool
	}{
		{name: "account prefix", filename: "R0460131L0199873_statement.pdf", want: "R0460131L0199873", wantOK: true},
		{name: "account label", filename: "Ledger Account: 55123.pdf", want: "55123", wantOK: true},
		{name: "acct label", filename: "Acct #9981 history.pdf", want: "9981", wantOK: true},
		{name: "falls back to path", filename: "statement.pdf", path: "/Owners/Account 4410/", want: "4410", wantOK: true},
		{name: "nothing", filename: "statement.pdf", path: "/Billing/", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := x.OwnerAccount(tt.filename, tt.path)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v (value %q)", ok, tt.wantOK, got)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewExtractor_RequiresCaptureGroup(t *testing.T) {
	if _, err := NewExtractor([]string{`Account\d+`}, nil); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
	if _, err := NewExtractor([]string{`(unclosed`}, nil); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern for bad syntax, got %v", err)
	}
}

func TestPattern_Unless(t *testing.T) {
	p := Unless(`policy`, `insurance`)

	tests := []struct {
		in   string
		want bool
	}{
		{in: "pool policy.pdf", want: true},
		{in: "policy insurance.pdf", want: false},
		{in: "insurance policy.pdf", want: true},
		{in: "policy insurance policy.pdf", want: true},
		{in: "bylaws.pdf", want: false},
	}
	for _, tt := range tests {
		if got := p.MatchString(tt.in); got != tt.want {
			t.Errorf("MatchString(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewDefault()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("owner statement gets account and community", func(t *testing.T) {
		doc := domain.Document{
			ID:   "doc-1",
			Name: "R0460131L0199873 statement.pdf",
			Path: "/sites/AssociationDocs/Brushy%20Creek/Statements/",
		}
		got := c.Classify(doc, at)
		if got.Category != "owner_statement" || got.AccessLevel != domain.AccessOwnerOnly {
			t.Fatalf("got (%s, %s)", got.Category, got.AccessLevel)
		}
		if got.CommunityName != "Brushy Creek" {
			t.Errorf("community: got %q", got.CommunityName)
		}
		if got.OwnerAccountID != "R0460131L0199873" {
			t.Errorf("owner account: got %q", got.OwnerAccountID)
		}
		if !got.ClassifiedAt.Equal(at) {
			t.Errorf("classified_at: got %v", got.ClassifiedAt)
		}
	})

	t.Run("non-owner category never carries account id", func(t *testing.T) {
		doc := domain.Document{ID: "doc-2", Name: "Budget Account 12345.pdf"}
		got := c.Classify(doc, at)
		if got.Category != "board_financial" {
			t.Fatalf("category: got %q", got.Category)
		}
		if got.OwnerAccountID != "" {
			t.Errorf("owner account should be empty, got %q", got.OwnerAccountID)
		}
	})

	t.Run("existing community is preserved", func(t *testing.T) {
		doc := domain.Document{ID: "doc-3", Name: "random.pdf", Path: "/Shared/", CommunityName: "Existing HOA"}
		got := c.Classify(doc, at)
		if got.CommunityName != "Existing HOA" {
			t.Errorf("community: got %q", got.CommunityName)
		}
		if got.Category != domain.CategoryUncategorized || got.AccessLevel != domain.AccessStaffOnly {
			t.Errorf("got (%s, %s)", got.Category, got.AccessLevel)
		}
	})
}
