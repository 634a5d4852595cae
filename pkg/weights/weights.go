// Package weights provides publish ordering weights for API management resource kinds.
// Kinds with lower weights are put first and deleted last.
package weights

import (
	"sort"
)

// Default weights for resource kinds.
// A kind only references kinds with a strictly lower weight.
const (
	WeightNamedValue         = 0
	WeightTag                = 10
	WeightVersionSet         = 20
	WeightGateway            = 30
	WeightBackend            = 40
	WeightLogger             = 50
	WeightDiagnostic         = 60
	WeightPolicyFragment     = 70
	WeightServicePolicy      = 80
	WeightProduct            = 90
	WeightProductPolicy      = 100
	WeightProductGroup       = 110
	WeightProductTag         = 120
	WeightAPI                = 130
	WeightAPIPolicy          = 140
	WeightAPIDiagnostic      = 150
	WeightAPITag             = 160
	WeightAPIOperationPolicy = 170
	WeightProductAPI         = 180
	WeightGatewayAPI         = 190
	WeightDefault            = 1000
)

// kindWeights maps kind name to weight.
var kindWeights = map[string]int{
	"NamedValue":         WeightNamedValue,
	"Tag":                WeightTag,
	"VersionSet":         WeightVersionSet,
	"Gateway":            WeightGateway,
	"Backend":            WeightBackend,
	"Logger":             WeightLogger,
	"Diagnostic":         WeightDiagnostic,
	"PolicyFragment":     WeightPolicyFragment,
	"ServicePolicy":      WeightServicePolicy,
	"Product":            WeightProduct,
	"ProductPolicy":      WeightProductPolicy,
	"ProductGroup":       WeightProductGroup,
	"ProductTag":         WeightProductTag,
	"API":                WeightAPI,
	"APIPolicy":          WeightAPIPolicy,
	"APIDiagnostic":      WeightAPIDiagnostic,
	"APITag":             WeightAPITag,
	"APIOperationPolicy": WeightAPIOperationPolicy,
	"ProductAPI":         WeightProductAPI,
	"GatewayAPI":         WeightGatewayAPI,
}

// GetWeight returns the weight for a kind.
// Lower weights should be put first.
func GetWeight(kind string) int {
	if weight, ok := kindWeights[kind]; ok {
		return weight
	}

	// Default weight for unknown kinds
	return WeightDefault
}

// SortByKind orders items by the weight of the kind kindOf reports, in put
// order: referenced kinds come before the kinds referencing them. Kinds with
// equal weight are ordered by name.
func SortByKind[T any](items []T, kindOf func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ki, kj := kindOf(items[i]), kindOf(items[j])
		wi, wj := GetWeight(ki), GetWeight(kj)
		if wi != wj {
			return wi < wj
		}
		return ki < kj
	})
}

// SortByKindReverse orders items in the exact reverse of SortByKind.
func SortByKindReverse[T any](items []T, kindOf func(T) string) {
	SortByKind(items, kindOf)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
