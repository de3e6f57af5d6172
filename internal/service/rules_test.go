package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
)

func orderWithItem(catalogID, title string) *domain.Order {
	return &domain.Order{
		ID:     2000001,
		Status: domain.StatusPaid,
		Items: []domain.OrderItem{
			{Item: domain.ItemInfo{ID: catalogID, Title: title}, Quantity: 1},
		},
	}
}

func TestDefaultRules_RefrigeristaProGetsDownloadLinks(t *testing.T) {
	body := DefaultRules().Select(orderWithItem(RefrigeristaProCatalogID, "Refrigerista Pro"))
	require.Contains(t, body, "Refrigerista Pro")
	require.Contains(t, body, "https://refrigeristapro.com.br/download/windows")
	require.Contains(t, body, "https://refrigeristapro.com.br/download/android")
	require.Contains(t, body, "Licença:")
}

func TestDefaultRules_OtherCatalogGetsGenericTemplate(t *testing.T) {
	body := DefaultRules().Select(orderWithItem("MLB999", "Curso de Elétrica"))
	require.Contains(t, body, "Curso de Elétrica")
	require.NotContains(t, body, "download/windows")
}

func TestDefaultRules_OrderWithoutItemsFallsBack(t *testing.T) {
	body := DefaultRules().Select(&domain.Order{ID: 1, Status: domain.StatusPaid})
	require.Contains(t, body, "seu produto")
}

func TestRuleTable_FirstMatchWins(t *testing.T) {
	table := NewRuleTable(
		func(*domain.Order) string { return "fallback" },
		MessageRule{CatalogID: "MLB1", Template: func(*domain.Order) string { return "first" }},
		MessageRule{CatalogID: "MLB1", Template: func(*domain.Order) string { return "second" }},
	)
	require.Equal(t, "first", table.Select(orderWithItem("MLB1", "x")))
	require.Equal(t, "fallback", table.Select(orderWithItem("MLB2", "y")))
}

func TestRuleTable_FallbackIsMandatory(t *testing.T) {
	require.Panics(t, func() { NewRuleTable(nil) })
}
