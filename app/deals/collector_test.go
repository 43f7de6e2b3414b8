package deals

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCatalogCollectorBuiltIn(t *testing.T) {
	collector := NewCatalogCollector("")

	deals, err := collector.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(deals) != 6 {
		t.Fatalf("Expected 6 deals, got %d", len(deals))
	}

	first := deals[0]
	if first.Title != "Sony WH-1000XM5 Noise Canceling Headphones" {
		t.Errorf("Expected Sony headphones first, got '%s'", first.Title)
	}
	if first.DiscountPercent == nil || *first.DiscountPercent != 25 {
		t.Errorf("Expected discount 25, got %v", first.DiscountPercent)
	}
	if first.OriginalPrice != "$399.99" {
		t.Errorf("Expected original price '$399.99', got '%s'", first.OriginalPrice)
	}

	chatGPT := deals[3]
	if chatGPT.OriginalPrice != "" || chatGPT.DiscountPercent != nil || chatGPT.ImageURL != "" {
		t.Errorf("Expected optional fields to be empty for '%s'", chatGPT.Title)
	}
}

func TestCatalogCollectorFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.yml")
	content := `
deals:
  - title: Mechanical Keyboard
    description: Hot-swappable switches.
    deal_price: "$59.99"
    product_url: https://example.com/keyboard
    retailer: Example
    category: gadgets
    expires_at: 2030-01-01T00:00:00Z
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	deals, err := NewCatalogCollector(path).Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(deals) != 1 {
		t.Fatalf("Expected 1 deal, got %d", len(deals))
	}
	if deals[0].ExpiresAt == nil || deals[0].ExpiresAt.Year() != 2030 {
		t.Errorf("Expected expiry in 2030, got %v", deals[0].ExpiresAt)
	}
}

func TestCatalogCollectorValidation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name: "missing price",
			content: `
deals:
  - title: Widget
    description: A widget.
    product_url: https://example.com/widget
    retailer: Example
    category: gadgets
`,
		},
		{
			name: "invalid url",
			content: `
deals:
  - title: Widget
    description: A widget.
    deal_price: "$1"
    product_url: not a url
    retailer: Example
    category: gadgets
`,
		},
		{
			name: "discount out of range",
			content: `
deals:
  - title: Widget
    description: A widget.
    deal_price: "$1"
    discount_percent: 150
    product_url: https://example.com/widget
    retailer: Example
    category: gadgets
`,
		},
		{
			name:    "malformed yaml",
			content: "deals: [",
		},
	}

	collector := NewCatalogCollector("")
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := collector.Parse([]byte(tc.content)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestCatalogCollectorMissingFile(t *testing.T) {
	_, err := NewCatalogCollector(filepath.Join(t.TempDir(), "missing.yml")).Run(context.Background())
	if err == nil {
		t.Fatal("Expected error for missing catalog file")
	}
	if !strings.Contains(err.Error(), "failed to read deal catalog") {
		t.Errorf("Expected read error, got: %v", err)
	}
}

func TestCatalogCollectorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewCatalogCollector("").Run(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
