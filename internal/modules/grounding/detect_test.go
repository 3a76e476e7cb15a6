package grounding

import "testing"

func TestDetectFormulas(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"prose only", "The water cycle moves moisture between the ocean and the sky.", false},
		{"assignment equation", "From the data we see that F = ma holds for each trial.", true},
		{"tex inline", "Einstein showed that $E=mc^2$ for a body at rest.", true},
		{"tex command", `The area is \frac{1}{2}bh for any triangle.`, true},
		{"unicode operator", "The uncertainty is ±0.05 in every measurement.", true},
		{"keyword english", "Newton's second law of motion relates force and acceleration.", true},
		{"keyword arabic", "ينص قانون نيوتن الثاني على العلاقة بين القوة والتسارع", true},
		{"arithmetic chain", "So 12 + 30 gives the total distance in meters.", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectFormulas(tt.text)
			if got.Found != tt.want {
				t.Fatalf("DetectFormulas(%q).Found = %v, want %v (matched %v)", tt.text, got.Found, tt.want, got.Matched)
			}
			if got.Kind != MarkerFormulas {
				t.Fatalf("Kind = %q, want %q", got.Kind, MarkerFormulas)
			}
			if got.Found && len(got.Matched) == 0 {
				t.Fatal("Found=true but no matched rule names recorded")
			}
		})
	}
}

func TestDetectExamples(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"prose only", "Plants absorb sunlight through their leaves.", false},
		{"numbered example", "Example 3: A car accelerates from rest.", true},
		{"worked example", "A worked example follows the definition.", true},
		{"numbered problem", "Problem 12 asks about the same setup.", true},
		{"solution marker", "Solution: first convert the units.", true},
		{"arabic example", "مثال ١: احسب سرعة الجسم", true},
		{"arabic exercise", "تمرين على الدرس السابق", true},
		{"arabic solution", "الحل: نحول الوحدات أولاً", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectExamples(tt.text)
			if got.Found != tt.want {
				t.Fatalf("DetectExamples(%q).Found = %v, want %v (matched %v)", tt.text, got.Found, tt.want, got.Matched)
			}
		})
	}
}
