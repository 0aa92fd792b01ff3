package quota

import "testing"

func TestIsQuotaError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"402 insufficient credits", 402, `{"error":"Insufficient credits"}`, true},
		{"429 rate limit", 429, `{"error":"Rate limit exceeded, try later"}`, true},
		{"403 quota exceeded", 403, `{"error":"quota exceeded for this account"}`, true},
		{"429 capacity", 429, `{"error":"server at capacity"}`, true},
		{"limit reached phrase", 429, `{"error":"monthly limit reached"}`, true},
		{"402 but unrelated body", 402, `{"error":"payment method declined"}`, false},
		{"status not in set", 500, `{"error":"insufficient quota"}`, false},
		{"400 bad request not quota", 400, `{"error":"invalid request: missing model"}`, false},
		{"429 but generic overload wording mismatch", 429, `{"error":"temporarily unavailable"}`, false},
		{"case insensitive match", 403, `{"ERROR":"BILLING ISSUE"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuotaError(tt.status, tt.body); got != tt.want {
				t.Errorf("IsQuotaError(%d, %q) = %v, want %v", tt.status, tt.body, got, tt.want)
			}
		})
	}
}
