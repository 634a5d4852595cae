package publish

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/opmodel/apimpub/internal/artifact"
	"github.com/opmodel/apimpub/internal/merge"
	"github.com/opmodel/apimpub/pkg/weights"
)

// Kinds returns every kind descriptor in put order.
func Kinds() []artifact.Descriptor {
	kinds := []artifact.Descriptor{
		{
			Kind:             artifact.KindNamedValue,
			Layout:           []string{"named values", artifact.Wildcard},
			InformationFile:  "namedValueInformation.json",
			OverlayPath:      []string{"namedValues"},
			AllowOverlayOnly: true,
			Prunable:         true,
			URI:              top("namedValues"),
			Collection:       collection("namedValues"),
			Guard:            secretWithoutValue,
		},
		{
			Kind:            artifact.KindTag,
			Layout:          []string{"tags", artifact.Wildcard},
			InformationFile: "tagInformation.json",
			OverlayPath:     []string{"tags"},
			Prunable:        true,
			URI:             top("tags"),
			Collection:      collection("tags"),
		},
		{
			Kind:            artifact.KindVersionSet,
			Layout:          []string{"version sets", artifact.Wildcard},
			InformationFile: "versionSetInformation.json",
			OverlayPath:     []string{"versionSets"},
			Prunable:        true,
			URI:             top("apiVersionSets"),
			Collection:      collection("apiVersionSets"),
		},
		{
			Kind:            artifact.KindGateway,
			Layout:          []string{"gateways", artifact.Wildcard},
			InformationFile: "gatewayInformation.json",
			OverlayPath:     []string{"gateways"},
			Prunable:        true,
			URI:             top("gateways"),
			Collection:      collection("gateways"),
		},
		{
			Kind:            artifact.KindBackend,
			Layout:          []string{"backends", artifact.Wildcard},
			InformationFile: "backendInformation.json",
			OverlayPath:     []string{"backends"},
			Prunable:        true,
			URI:             top("backends"),
			Collection:      collection("backends"),
		},
		{
			Kind:            artifact.KindLogger,
			Layout:          []string{"loggers", artifact.Wildcard},
			InformationFile: "loggerInformation.json",
			OverlayPath:     []string{"loggers"},
			Prunable:        true,
			URI:             top("loggers"),
			Collection:      collection("loggers"),
		},
		{
			Kind:            artifact.KindDiagnostic,
			Layout:          []string{"diagnostics", artifact.Wildcard},
			InformationFile: "diagnosticInformation.json",
			OverlayPath:     []string{"diagnostics"},
			Prunable:        true,
			URI:             top("diagnostics"),
			Collection:      collection("diagnostics"),
		},
		{
			Kind:            artifact.KindPolicyFragment,
			Layout:          []string{"policy fragments", artifact.Wildcard},
			InformationFile: "policyFragmentInformation.json",
			AuxiliaryFiles:  []string{policyFile},
			OverlayPath:     []string{"policyFragments"},
			Prunable:        true,
			URI:             top("policyFragments"),
			Collection:      collection("policyFragments"),
			Decorate:        attachFragmentPolicy,
		},
		{
			Kind:            artifact.KindServicePolicy,
			InformationFile: policyFile,
			Shape:           artifact.ShapePolicy,
			URI: func(artifact.Names) string {
				return "/policies/policy"
			},
		},
		{
			Kind:            artifact.KindProduct,
			Layout:          []string{"products", artifact.Wildcard},
			InformationFile: "productInformation.json",
			OverlayPath:     []string{"products"},
			Prunable:        true,
			URI:             top("products"),
			Collection:      collection("products"),
		},
		{
			Kind:            artifact.KindProductPolicy,
			Layout:          []string{"products", artifact.Wildcard},
			InformationFile: policyFile,
			Shape:           artifact.ShapePolicy,
			URI:             scopedPolicy("products"),
		},
		link(artifact.KindProductGroup, "products", "groups.json", "groups", nil),
		link(artifact.KindProductTag, "products", "tags.json", "tags", nil),
		{
			Kind:            artifact.KindAPI,
			Layout:          []string{"apis", artifact.Wildcard},
			InformationFile: "apiInformation.json",
			AuxiliaryFiles:  specificationFiles(),
			OverlayPath:     []string{"apis"},
			Prunable:        true,
			URI:             top("apis"),
			Collection:      collection("apis"),
			Decorate:        attachSpecification,
			Stage:           revisionStage,
		},
		{
			Kind:            artifact.KindAPIPolicy,
			Layout:          []string{"apis", artifact.Wildcard},
			InformationFile: policyFile,
			Shape:           artifact.ShapePolicy,
			URI:             scopedPolicy("apis"),
		},
		{
			Kind:            artifact.KindAPIDiagnostic,
			Layout:          []string{"apis", artifact.Wildcard, "diagnostics", artifact.Wildcard},
			InformationFile: "diagnosticInformation.json",
			OverlayPath:     []string{"apis", "diagnostics"},
			URI: func(n artifact.Names) string {
				return artifact.ResourcePath("apis", n[0], "diagnostics", n[1])
			},
			Collection: func(scope artifact.Names) string {
				return artifact.ResourcePath("apis", scope[0]) + "/diagnostics"
			},
		},
		link(artifact.KindAPITag, "apis", "tags.json", "tags", nil),
		{
			Kind:            artifact.KindAPIOperationPolicy,
			Layout:          []string{"apis", artifact.Wildcard, "operations", artifact.Wildcard},
			InformationFile: policyFile,
			Shape:           artifact.ShapePolicy,
			URI: func(n artifact.Names) string {
				return artifact.ResourcePath("apis", n[0], "operations", n[1]) + "/policies/policy"
			},
		},
		link(artifact.KindProductAPI, "products", "apis.json", "apis", nil),
		link(artifact.KindGatewayAPI, "gateways", "apis.json", "apis", map[string]any{
			"properties": map[string]any{"provisioningState": "created"},
		}),
	}

	weights.SortByKind(kinds, func(d artifact.Descriptor) string { return string(d.Kind) })
	return kinds
}

// Lookup returns the descriptor of kind.
func Lookup(kind artifact.Kind) (artifact.Descriptor, bool) {
	for _, d := range Kinds() {
		if d.Kind == kind {
			return d, true
		}
	}
	return artifact.Descriptor{}, false
}

// OverlayPaths lists the overlay paths of all kinds taking overlays.
func OverlayPaths(kinds []artifact.Descriptor) [][]string {
	var paths [][]string
	for _, d := range kinds {
		if d.HasOverlay() {
			paths = append(paths, d.OverlayPath)
		}
	}
	return paths
}

// overlayChildren returns the overlay properties nested under d's entries
// that address other kinds.
func overlayChildren(d artifact.Descriptor, kinds []artifact.Descriptor) []string {
	var children []string
	for _, other := range kinds {
		p := other.OverlayPath
		if len(p) > len(d.OverlayPath) && slices.Equal(p[:len(d.OverlayPath)], d.OverlayPath) {
			child := p[len(d.OverlayPath)]
			if !slices.Contains(children, child) {
				children = append(children, child)
			}
		}
	}
	return children
}

const policyFile = "policy.xml"

func top(collectionName string) func(artifact.Names) string {
	return func(n artifact.Names) string {
		return artifact.ResourcePath(collectionName, n[0])
	}
}

func collection(collectionName string) func(artifact.Names) string {
	return func(artifact.Names) string {
		return "/" + collectionName
	}
}

func scopedPolicy(parent string) func(artifact.Names) string {
	return func(n artifact.Names) string {
		return artifact.ResourcePath(parent, n[0]) + "/policies/policy"
	}
}

// link describes a list file in a parent's directory naming resources
// associated with the parent.
func link(kind artifact.Kind, parent, file, sub string, body map[string]any) artifact.Descriptor {
	if body == nil {
		body = map[string]any{}
	}
	return artifact.Descriptor{
		Kind:            kind,
		Layout:          []string{parent, artifact.Wildcard},
		InformationFile: file,
		Shape:           artifact.ShapeLink,
		LinkBody:        body,
		URI: func(n artifact.Names) string {
			return artifact.ResourcePath(parent, n[0], sub, n[1])
		},
		Collection: func(scope artifact.Names) string {
			return artifact.ResourcePath(parent, scope[0]) + "/" + sub
		},
	}
}

var (
	secretPath     = jp.C("properties").C("secret")
	valuePath      = jp.C("properties").C("value")
	keyVaultIDPath = jp.C("properties").C("keyVault").C("secretIdentifier")
)

// secretWithoutValue refuses secret named values that carry neither an
// inline value nor a key vault reference.
func secretWithoutValue(a artifact.Artifact) string {
	secret, _ := secretPath.First(a.Document).(bool)
	if !secret {
		return ""
	}
	if valuePath.First(a.Document) != nil || keyVaultIDPath.First(a.Document) != nil {
		return ""
	}
	return "secret named value has neither properties.value nor properties.keyVault.secretIdentifier"
}

// specificationFormats maps specification file names to API import formats.
var specificationFormats = []struct {
	file   string
	format string
}{
	{"specification.yaml", "openapi"},
	{"specification.yml", "openapi"},
	{"specification.json", "openapi+json"},
	{"specification.wsdl", "wsdl"},
	{"specification.wadl", "wadl-xml"},
}

func specificationFiles() []string {
	files := make([]string, 0, len(specificationFormats))
	for _, f := range specificationFormats {
		files = append(files, f.file)
	}
	return files
}

// attachSpecification imports the first specification file found next to
// the API information file.
func attachSpecification(ctx context.Context, r artifact.Reader, loc artifact.Located, doc map[string]any) (map[string]any, error) {
	for _, spec := range specificationFormats {
		data, err := r.ReadFile(ctx, filepath.Join(loc.Dir, spec.file))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return merge.Merge(doc, map[string]any{
			"properties": map[string]any{
				"format": spec.format,
				"value":  string(data),
			},
		}), nil
	}
	return doc, nil
}

// attachFragmentPolicy sets the fragment's XML from its policy file.
func attachFragmentPolicy(ctx context.Context, r artifact.Reader, loc artifact.Located, doc map[string]any) (map[string]any, error) {
	data, err := r.ReadFile(ctx, filepath.Join(loc.Dir, policyFile))
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}
	return merge.Merge(doc, policyDocument(string(data))), nil
}

func policyDocument(xml string) map[string]any {
	return map[string]any{
		"properties": map[string]any{
			"format": "rawxml",
			"value":  xml,
		},
	}
}

// revisionStage puts API revisions after the APIs they revise.
func revisionStage(n artifact.Names) int {
	if strings.Contains(n.Last(), ";rev=") {
		return 1
	}
	return 0
}
