package usecase

import "testing"

func TestFallbackResponse(t *testing.T) {
	testCases := []struct {
		name    string
		message string
		want    string
	}{
		{name: "tomato", message: "When should I plant Tomatoes?", want: tomatoFallback},
		{name: "tomato wins over tools", message: "tools for tomato", want: tomatoFallback},
		{name: "tools", message: "Which equipment do I need?", want: toolFallback},
		{name: "disease", message: "My leaves have a disease", want: diseaseFallback},
		{name: "pest", message: "pest on my beans", want: diseaseFallback},
		{name: "soil", message: "improve my soil", want: soilFallback},
		{name: "irrigation", message: "irrigation schedule", want: waterFallback},
		{name: "generic", message: "hello", want: genericFallback},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FallbackResponse(tc.message); got != tc.want {
				t.Errorf("FallbackResponse(%q) = %q, want %q", tc.message, got, tc.want)
			}
		})
	}
}

func TestIsAgricultureRelated(t *testing.T) {
	testCases := []struct {
		message string
		want    bool
	}{
		{message: "How do I grow beans?", want: true},
		{message: "best tractor for a small FARM", want: true},
		{message: "compost ratios", want: true},
		{message: "what time is it", want: false},
		{message: "tell me a joke", want: false},
	}

	for _, tc := range testCases {
		if got := IsAgricultureRelated(tc.message); got != tc.want {
			t.Errorf("IsAgricultureRelated(%q) = %v, want %v", tc.message, got, tc.want)
		}
	}
}
