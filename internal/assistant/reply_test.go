package assistant

import "testing"

func TestSanitizeReply(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Here is your plan:\n- Oats", "Here is your plan:\n- Oats"},
		{"fenced prose keeps content", "Try this:\n```\nEggs and toast\n```", "Try this:\nEggs and toast"},
		{"fenced json with prose field", "```json\n{\"explanation\": \"Two stores nearby.\", \"stores\": []}\n```", "Two stores nearby."},
		{"bare json with prose field", `{"shopping_list_text": "Produce:\n- Spinach"}`, "Produce:\n- Spinach"},
		{"json without prose dropped", `{"day": 1, "meals": []}`, ""},
		{"invalid json kept", "{not json} but text", "{not json} but text"},
		{"blank lines collapsed", "a\n\n\n\nb", "a\n\nb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeReply(tc.in); got != tc.want {
				t.Fatalf("SanitizeReply(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
