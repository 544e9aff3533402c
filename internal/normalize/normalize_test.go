package normalize

import "testing"

func TestQuery(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantText  string
		wantEmpty bool
		wantWords int
	}{
		{
			name:      "simple question",
			raw:       "what is total revenue?",
			wantText:  "what is total revenue?",
			wantWords: 4,
		},
		{
			name:      "leading and trailing space",
			raw:       "   top products   ",
			wantText:  "top products",
			wantWords: 2,
		},
		{
			name:      "interior runs collapse",
			raw:       "sales\t\tby   month",
			wantText:  "sales by month",
			wantWords: 3,
		},
		{
			name:      "multi-line paste",
			raw:       "compare revenue\nacross regions\r\nthis year",
			wantText:  "compare revenue across regions this year",
			wantWords: 6,
		},
		{
			name:      "empty",
			raw:       "",
			wantEmpty: true,
		},
		{
			name:      "whitespace only",
			raw:       " \n\t ",
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nq := Query(tt.raw)
			if nq.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", nq.Raw, tt.raw)
			}
			if nq.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", nq.Text, tt.wantText)
			}
			if nq.Empty != tt.wantEmpty {
				t.Errorf("Empty = %v, want %v", nq.Empty, tt.wantEmpty)
			}
			if nq.Words != tt.wantWords {
				t.Errorf("Words = %d, want %d", nq.Words, tt.wantWords)
			}
		})
	}
}
