package cache

import "testing"

func TestBalanceKey(t *testing.T) {
	got := BalanceKey("abc-123")
	if got != "balance_abc-123" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestStatementKey(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		page       int
		limit      int
		want       string
	}{
		{
			name:  "full window",
			start: "2026-01-01",
			end:   "2026-01-31",
			page:  1,
			limit: 10,
			want:  "statement-acc-2026-01-01-2026-01-31-page1-limit10",
		},
		{
			name:  "open bounds encode as all",
			page:  2,
			limit: 25,
			want:  "statement-acc-all-all-page2-limit25",
		},
		{
			name:  "only start bound",
			start: "2026-01-01",
			page:  1,
			limit: 10,
			want:  "statement-acc-2026-01-01-all-page1-limit10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatementKey("acc", tt.start, tt.end, tt.page, tt.limit)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
