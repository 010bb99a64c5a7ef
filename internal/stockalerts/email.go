package stockalerts

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shopzen/shopzen-backend/pkg/db/models"
	"github.com/shopzen/shopzen-backend/pkg/email"
	"github.com/shopzen/shopzen-backend/pkg/events"
)

// formatPrice renders a cents amount as a dollar string with two decimals.
func formatPrice(cents int64) string {
	return "$" + decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}

// storefrontURL builds the public link for a store: custom path when set,
// else the name slug, else the raw store id.
func storefrontURL(baseURL string, store *models.Store) string {
	return strings.TrimRight(baseURL, "/") + "/" + store.StorefrontPath()
}

// buildAlertMessage renders the back-in-stock email for one subscriber.
func buildAlertMessage(store *models.Store, product events.ProductSnapshot, baseURL string, sub models.StockSubscription) email.Message {
	storeName := html.EscapeString(store.Name)
	productName := html.EscapeString(product.Name)
	link := storefrontURL(baseURL, store)

	subject := fmt.Sprintf("It's Back! %s is back in stock!", product.Name)
	plain := fmt.Sprintf(
		"Good news! %s at %s is back in stock for %s. Visit %s to grab yours.",
		product.Name, store.Name, formatPrice(product.PriceCents), link,
	)
	htmlBody := fmt.Sprintf(`<html><body>
<p>Good news!</p>
<p><strong>%s</strong> at %s is back in stock for <strong>%s</strong>.</p>
<p><a href="%s">Visit %s</a> to grab yours before it sells out again.</p>
</body></html>`,
		productName, storeName, formatPrice(product.PriceCents), link, storeName,
	)

	return email.Message{
		To:        sub.Email,
		Subject:   subject,
		PlainText: plain,
		HTML:      htmlBody,
	}
}
