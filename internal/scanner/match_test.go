package scanner

import (
	"testing"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

func TestWatchTargets(t *testing.T) {
	t.Parallel()

	companies := []domain.Company{
		{ID: 1, ContactEmail: " HR@Acme.com "},
		{ID: 2},
		{ID: 3, ContactEmail: "jobs@globex.io"},
		{ID: 4, ContactEmail: "hr@acme.com"},
	}

	got := WatchTargets(companies)
	want := []string{"hr@acme.com", "jobs@globex.io"}
	if len(got) != len(want) {
		t.Fatalf("WatchTargets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("WatchTargets()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	if got := BuildQuery([]string{"a@x.com"}); got != "from:a@x.com" {
		t.Fatalf("BuildQuery(single) = %q", got)
	}
	if got := BuildQuery([]string{"a@x.com", "b@y.com"}); got != "from:a@x.com OR from:b@y.com" {
		t.Fatalf("BuildQuery(two) = %q", got)
	}
}

func TestMatchCompany(t *testing.T) {
	t.Parallel()

	companies := []domain.Company{
		{ID: 1, Name: "No address"},
		{ID: 2, Name: "Acme", ContactEmail: "hr@acme.com"},
		{ID: 3, Name: "Acme recruiting", ContactEmail: "recruiting-hr@acme.com"},
	}

	tests := []struct {
		name   string
		from   string
		wantID int64
		wantOK bool
	}{
		{name: "display name and brackets", from: `"HR Team" <hr@acme.com>`, wantID: 2, wantOK: true},
		{name: "upper case header", from: "HR@ACME.COM", wantID: 2, wantOK: true},
		{name: "overlap resolves to first company", from: "recruiting-hr@acme.com", wantID: 2, wantOK: true},
		{name: "no match", from: "news@other.com", wantOK: false},
		{name: "empty header", from: "", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := MatchCompany(tt.from, companies)
			if ok != tt.wantOK {
				t.Fatalf("MatchCompany() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.ID != tt.wantID {
				t.Fatalf("MatchCompany() id = %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestContainsCaseInsensitive(t *testing.T) {
	t.Parallel()

	if !containsCaseInsensitive("Recruiting <HR@Example.com>", "hr@example.com") {
		t.Fatal("expected case-insensitive substring match")
	}
	if containsCaseInsensitive("anything", "") {
		t.Fatal("empty needle must not match")
	}
}

func TestIsAlreadyNotified(t *testing.T) {
	t.Parallel()

	messages := []string{"Added Acme", "📩 Acme HR: Interview confirmed"}
	if !IsAlreadyNotified("Interview confirmed", messages) {
		t.Fatal("subject contained in a message should count as notified")
	}
	if IsAlreadyNotified("Offer letter", messages) {
		t.Fatal("unrelated subject should not count as notified")
	}
	if IsAlreadyNotified("", messages) {
		t.Fatal("empty subject should never count as notified")
	}
}

func TestHeaderValue(t *testing.T) {
	t.Parallel()

	headers := []Header{{Name: "SUBJECT", Value: "Hi"}, {Name: "Subject", Value: "second"}}
	if got := HeaderValue(headers, "subject"); got != "Hi" {
		t.Fatalf("HeaderValue() = %q, want first match", got)
	}
	if got := HeaderValue(headers, "From"); got != "" {
		t.Fatalf("HeaderValue(missing) = %q", got)
	}
}
