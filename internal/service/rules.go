package service

import (
	"fmt"
	"math/rand"

	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
)

// TemplateFunc renders a message body from a resolved order.
type TemplateFunc func(order *domain.Order) string

// MessageRule binds a catalog identifier to its template.
type MessageRule struct {
	CatalogID string
	Template  TemplateFunc
}

// RuleTable selects message content by matching the order's first line item
// against an ordered rule list. Evaluation is first-match-wins in declaration
// order; the fallback matches everything unmatched and is always evaluated
// last.
type RuleTable struct {
	rules    []MessageRule
	fallback TemplateFunc
}

// NewRuleTable builds a rule table. The fallback is mandatory, which makes
// Select total over any order.
func NewRuleTable(fallback TemplateFunc, rules ...MessageRule) *RuleTable {
	if fallback == nil {
		panic("service: rule table requires a fallback template")
	}
	return &RuleTable{rules: rules, fallback: fallback}
}

// Select returns the message body for the order.
func (t *RuleTable) Select(order *domain.Order) string {
	catalogID := order.FirstCatalogID()
	for _, rule := range t.rules {
		if rule.CatalogID == catalogID {
			return rule.Template(order)
		}
	}
	return t.fallback(order)
}

// RefrigeristaProCatalogID is the listing that ships with dedicated download
// links instead of the generic thank-you text.
const RefrigeristaProCatalogID = "MLBU1425061106"

// DefaultRules is the production rule table.
func DefaultRules() *RuleTable {
	return NewRuleTable(genericTemplate,
		MessageRule{CatalogID: RefrigeristaProCatalogID, Template: refrigeristaProTemplate},
	)
}

func refrigeristaProTemplate(order *domain.Order) string {
	return fmt.Sprintf(`Olá! Obrigado por adquirir o Refrigerista Pro 🚀

Download (Windows): https://refrigeristapro.com.br/download/windows
Download (Android): https://refrigeristapro.com.br/download/android
Manual: https://refrigeristapro.com.br/manual

Licença: %s

Qualquer dúvida é só responder por aqui.

Att, Alexander Jung.`, licenseFragment())
}

func genericTemplate(order *domain.Order) string {
	title := "seu produto"
	if len(order.Items) > 0 && order.Items[0].Item.Title != "" {
		title = order.Items[0].Item.Title
	}
	return fmt.Sprintf(`Olá! Obrigado por adquirir %s 🚀

Seu acesso: https://refrigeristapro.com.br/acesso
Licença: %s

Qualquer dúvida é só responder por aqui.

Att, Alexander Jung.`, title, licenseFragment())
}

// licenseFragment generates a short random code interpolated into message
// bodies. Presentation only; not unique and not a secret.
func licenseFragment() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}
