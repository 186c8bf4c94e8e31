package services

import (
	"testing"
	"time"

	"github.com/lengolf/venue-pos/models"
)

func TestDiscountAmount(t *testing.T) {
	tests := []struct {
		name     string
		discount models.Discount
		base     float64
		want     float64
		wantErr  bool
	}{
		{
			name:     "percentage",
			discount: models.Discount{Type: models.DiscountTypePercentage, Value: 10},
			base:     200.00,
			want:     20.00,
		},
		{
			name:     "percentage rounds to the satang",
			discount: models.Discount{Type: models.DiscountTypePercentage, Value: 10},
			base:     33.33,
			want:     3.33, // 3.333 -> 3.33
		},
		{
			name:     "fixed amount",
			discount: models.Discount{Type: models.DiscountTypeFixed, Value: 50},
			base:     200.00,
			want:     50.00,
		},
		{
			name:     "fixed amount clamps to base",
			discount: models.Discount{Type: models.DiscountTypeFixed, Value: 500},
			base:     200.00,
			want:     200.00,
		},
		{
			name:     "percentage above 100 rejected",
			discount: models.Discount{Type: models.DiscountTypePercentage, Value: 110},
			base:     200.00,
			wantErr:  true,
		},
		{
			name:     "negative value rejected",
			discount: models.Discount{Type: models.DiscountTypeFixed, Value: -5},
			base:     200.00,
			wantErr:  true,
		},
		{
			name:     "unknown type rejected",
			discount: models.Discount{Type: "bogo", Value: 1},
			base:     200.00,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiscountAmount(&tt.discount, tt.base)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got amount %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DiscountAmount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscountAvailable(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name     string
		discount models.Discount
		want     bool
	}{
		{
			name:     "always active",
			discount: models.Discount{IsActive: true, Availability: models.DiscountAvailabilityAlways},
			want:     true,
		},
		{
			name:     "inactive never applies",
			discount: models.Discount{IsActive: false, Availability: models.DiscountAvailabilityAlways},
			want:     false,
		},
		{
			name: "inside window",
			discount: models.Discount{
				IsActive: true, Availability: models.DiscountAvailabilityDateRange,
				ValidFrom: &yesterday, ValidUntil: &tomorrow,
			},
			want: true,
		},
		{
			name: "window already closed",
			discount: models.Discount{
				IsActive: true, Availability: models.DiscountAvailabilityDateRange,
				ValidFrom: &yesterday, ValidUntil: &yesterday,
			},
			want: false,
		},
		{
			name: "window not yet open",
			discount: models.Discount{
				IsActive: true, Availability: models.DiscountAvailabilityDateRange,
				ValidFrom: &tomorrow, ValidUntil: nil,
			},
			want: false,
		},
		{
			name: "open-ended window",
			discount: models.Discount{
				IsActive: true, Availability: models.DiscountAvailabilityDateRange,
				ValidFrom: &yesterday, ValidUntil: nil,
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiscountAvailable(&tt.discount, now); got != tt.want {
				t.Errorf("DiscountAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriceLinesItemThenReceipt(t *testing.T) {
	now := time.Now()
	itemDiscount := models.Discount{
		ID: 1, Type: models.DiscountTypePercentage, Value: 50,
		Scope: models.DiscountScopeItem, IsActive: true,
		Availability: models.DiscountAvailabilityAlways,
	}
	receiptDiscount := models.Discount{
		ID: 2, Type: models.DiscountTypePercentage, Value: 10,
		Scope: models.DiscountScopeReceipt, IsActive: true,
		Availability: models.DiscountAvailabilityAlways,
	}

	lines := []PricingLine{
		{Quantity: 1, UnitPrice: 100.00, Discount: &itemDiscount},
		{Quantity: 2, UnitPrice: 75.00},
	}

	totals, err := PriceLines(lines, &receiptDiscount, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// item pass first: 50 + 150 = 200, then 10% off the receipt
	if totals.Subtotal != 200.00 {
		t.Errorf("Subtotal = %v, want 200.00", totals.Subtotal)
	}
	if totals.ReceiptDiscountAmount != 20.00 {
		t.Errorf("ReceiptDiscountAmount = %v, want 20.00", totals.ReceiptDiscountAmount)
	}
	if totals.TotalAmount != 180.00 {
		t.Errorf("TotalAmount = %v, want 180.00", totals.TotalAmount)
	}
	// VAT is extracted from the discounted total, not added on top
	if totals.VatAmount != 11.78 {
		t.Errorf("VatAmount = %v, want 11.78", totals.VatAmount)
	}
}

func TestPriceLinesModifiers(t *testing.T) {
	lines := []PricingLine{
		{
			Quantity:  2,
			UnitPrice: 50.00,
			Modifiers: []models.ItemModifier{{Name: "extra shot", PriceDelta: 15.00}},
		},
	}

	totals, err := PriceLines(lines, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.Subtotal != 115.00 {
		t.Errorf("Subtotal = %v, want 115.00", totals.Subtotal)
	}
}

func TestPriceLinesRejectsExpiredDiscount(t *testing.T) {
	now := time.Now()
	past := now.AddDate(0, 0, -2)
	expired := models.Discount{
		ID: 7, Type: models.DiscountTypePercentage, Value: 10,
		Scope: models.DiscountScopeItem, IsActive: true,
		Availability: models.DiscountAvailabilityDateRange,
		ValidFrom:    &past, ValidUntil: &past,
	}

	lines := []PricingLine{{Quantity: 1, UnitPrice: 100.00, Discount: &expired}}
	if _, err := PriceLines(lines, nil, now); err == nil {
		t.Fatal("expected expired item discount to fail, got nil error")
	}
}

func TestPriceLinesRejectsScopeMismatch(t *testing.T) {
	now := time.Now()
	receiptScoped := models.Discount{
		ID: 3, Type: models.DiscountTypeFixed, Value: 10,
		Scope: models.DiscountScopeReceipt, IsActive: true,
		Availability: models.DiscountAvailabilityAlways,
	}
	itemScoped := models.Discount{
		ID: 4, Type: models.DiscountTypeFixed, Value: 10,
		Scope: models.DiscountScopeItem, IsActive: true,
		Availability: models.DiscountAvailabilityAlways,
	}

	lines := []PricingLine{{Quantity: 1, UnitPrice: 100.00, Discount: &receiptScoped}}
	if _, err := PriceLines(lines, nil, now); err == nil {
		t.Fatal("expected receipt-scope discount on an item to fail")
	}

	lines = []PricingLine{{Quantity: 1, UnitPrice: 100.00}}
	if _, err := PriceLines(lines, &itemScoped, now); err == nil {
		t.Fatal("expected item-scope discount on the receipt to fail")
	}
}

func TestReceiptTotalsVATExtraction(t *testing.T) {
	totals, err := ReceiptTotals(107.00, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.TotalAmount != 107.00 {
		t.Errorf("TotalAmount = %v, want 107.00", totals.TotalAmount)
	}
	if totals.VatAmount != 7.00 {
		t.Errorf("VatAmount = %v, want 7.00", totals.VatAmount)
	}
}

func TestReceiptTotalsFixedDiscountFloorsAtZero(t *testing.T) {
	big := models.Discount{
		ID: 5, Type: models.DiscountTypeFixed, Value: 500,
		Scope: models.DiscountScopeReceipt, IsActive: true,
		Availability: models.DiscountAvailabilityAlways,
	}
	totals, err := ReceiptTotals(120.00, &big, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.ReceiptDiscountAmount != 120.00 {
		t.Errorf("ReceiptDiscountAmount = %v, want 120.00", totals.ReceiptDiscountAmount)
	}
	if totals.TotalAmount != 0.00 {
		t.Errorf("TotalAmount = %v, want 0.00", totals.TotalAmount)
	}
	if totals.VatAmount != 0.00 {
		t.Errorf("VatAmount = %v, want 0.00", totals.VatAmount)
	}
}
