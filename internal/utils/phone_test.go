package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09123456789", want: "09123456789"},
		{in: "+989123456789", want: "09123456789"},
		{in: "00989123456789", want: "09123456789"},
		{in: " 09123456789 ", want: "09123456789"},
		{in: "9123456789", wantErr: true},
		{in: "0912345678", wantErr: true},
		{in: "091234567890", wantErr: true},
		{in: "08123456789", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NormalizePhone(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizePhone(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
