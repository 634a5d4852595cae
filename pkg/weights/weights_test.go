package weights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetWeight(t *testing.T) {
	tests := []struct {
		kind string
		want int
	}{
		{"NamedValue", WeightNamedValue},
		{"Backend", WeightBackend},
		{"API", WeightAPI},
		{"GatewayAPI", WeightGatewayAPI},
		{"Subscription", WeightDefault},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.want, GetWeight(tt.kind))
		})
	}
}

func identity(k string) string { return k }

func TestSortByKind_DeclaredOrder(t *testing.T) {
	kinds := []string{
		"GatewayAPI", "API", "Tag", "ProductAPI", "ServicePolicy", "NamedValue",
		"APIOperationPolicy", "Backend", "ProductTag", "Logger", "APITag",
		"Product", "VersionSet", "APIDiagnostic", "Gateway", "ProductGroup",
		"PolicyFragment", "APIPolicy", "Diagnostic", "ProductPolicy",
	}

	SortByKind(kinds, identity)

	assert.Equal(t, []string{
		"NamedValue", "Tag", "VersionSet", "Gateway", "Backend", "Logger",
		"Diagnostic", "PolicyFragment", "ServicePolicy", "Product", "ProductPolicy",
		"ProductGroup", "ProductTag", "API", "APIPolicy", "APIDiagnostic", "APITag",
		"APIOperationPolicy", "ProductAPI", "GatewayAPI",
	}, kinds)
}

func TestSortByKindReverse_IsReverseOfPut(t *testing.T) {
	put := []string{"API", "Unknown", "NamedValue", "Product", "Backend"}
	del := append([]string(nil), put...)

	SortByKind(put, identity)
	SortByKindReverse(del, identity)

	assert.Equal(t, []string{"NamedValue", "Backend", "Product", "API", "Unknown"}, put)
	for i := range put {
		assert.Equal(t, put[i], del[len(del)-1-i])
	}
}

type item struct {
	kind string
	id   int
}

func TestSortByKind(t *testing.T) {
	items := []item{{"API", 1}, {"Backend", 2}, {"API", 3}, {"NamedValue", 4}}

	SortByKind(items, func(i item) string { return i.kind })
	assert.Equal(t, []item{{"NamedValue", 4}, {"Backend", 2}, {"API", 1}, {"API", 3}}, items)

	SortByKindReverse(items, func(i item) string { return i.kind })
	assert.Equal(t, "NamedValue", items[len(items)-1].kind)
	assert.Equal(t, "API", items[0].kind)
}
