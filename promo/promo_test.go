package promo

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		subtotal     float64
		wantValid    bool
		wantDiscount float64
		wantMessage  string
	}{
		{"known code", "VELVET20", 100, true, 20, "Promo code applied: 20% off"},
		{"case insensitive", "velvet20", 100, true, 20, "Promo code applied: 20% off"},
		{"surrounding whitespace", "  Velvet20  ", 50, true, 10, "Promo code applied: 20% off"},
		{"discount rounds to cents", "VELVET20", 59.97, true, 11.99, "Promo code applied: 20% off"},
		{"unknown code", "WINTER50", 100, false, 0, "Invalid promo code"},
		{"empty code", "", 100, false, 0, "Please enter a promo code"},
		{"whitespace only", "   ", 100, false, 0, "Please enter a promo code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.code, tt.subtotal)
			if got.Valid != tt.wantValid {
				t.Fatalf("Valid: expected %v, got %v", tt.wantValid, got.Valid)
			}
			if got.DiscountAmount != tt.wantDiscount {
				t.Fatalf("DiscountAmount: expected %v, got %v", tt.wantDiscount, got.DiscountAmount)
			}
			if got.Message != tt.wantMessage {
				t.Fatalf("Message: expected %q, got %q", tt.wantMessage, got.Message)
			}
		})
	}
}
