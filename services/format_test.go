package services

import "testing"

func TestFormatAQLLevel_Values(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"smallest", 0.010, "0.01"},
		{"three decimals", 0.065, "0.065"},
		{"two decimals", 0.65, "0.65"},
		{"one", 1, "1.0"},
		{"one and a half", 1.5, "1.5"},
		{"four", 4, "4.0"},
		{"ten", 10, "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAQLLevel(tt.input)
			if got != tt.expect {
				t.Errorf("FormatAQLLevel(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestParseAQLLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"2.5", 2.5, false},
		{" 0.065 ", 0.065, false},
		{"1,5", 1.5, false},
		{"10", 10, false},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAQLLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAQLLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseAQLLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input  float64
		expect string
	}{
		{0, "0"},
		{8, "8"},
		{501, "501"},
		{1200, "1,200"},
		{35001, "35,001"},
		{150001, "150,001"},
		{500001, "500,001"},
		{1234567, "1,234,567"},
		{-3200, "-3,200"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			if got := FormatCount(tt.input); got != tt.expect {
				t.Errorf("FormatCount(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
