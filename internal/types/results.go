package types

// DefinitionLocation is a resolved declaration site ranked by confidence.
type DefinitionLocation struct {
	Name                 string     `json:"name"`
	QualifiedName        string     `json:"qualifiedName,omitempty"`
	Type                 SymbolKind `json:"type"`
	Signature            *string    `json:"signature,omitempty"`
	Modifiers            []string   `json:"modifiers"`
	Visibility           Visibility `json:"visibility"`
	Language             string     `json:"language"`
	FilePath             string     `json:"filePath"`
	StartOffset          int        `json:"startOffset"`
	EndOffset            int        `json:"endOffset"`
	LineNumber           int        `json:"lineNumber"`
	ContainingClass      *string    `json:"containingClass,omitempty"`
	Confidence           float64    `json:"confidence"`
	DisambiguationHint   *string    `json:"disambiguationHint"`
	AccessibilityWarning *string    `json:"accessibilityWarning"`
	IsTestCode           bool       `json:"isTestCode"`
	IsLibraryCode        bool       `json:"isLibraryCode"`
	IsAbstract           bool       `json:"isAbstract"`
}

// Usage types. The vocabulary is open; adapters may emit other strings.
const (
	UsageDeclaration         = "declaration"
	UsageMethodCall          = "method_call"
	UsageFunctionCall        = "function_call"
	UsageConstructorCall     = "constructor_call"
	UsageSuperCall           = "super_call"
	UsageFieldRead           = "field_read"
	UsageFieldWrite          = "field_write"
	UsageRead                = "read"
	UsageWrite               = "write"
	UsageAugmentedAssignment = "augmented_assignment"
	UsageDelete              = "delete"
	UsageInheritance         = "inheritance"
	UsageImplementation      = "implementation"
	UsageOverride            = "override"
	UsageTypeReference       = "type_reference"
	UsageImport              = "import"
	UsageDecorator           = "decorator"
	UsageAnnotation          = "annotation"
	UsagePropertyAccess      = "property_access"
	UsageMethodReference     = "method_reference"
	UsageArgument            = "argument"
	UsageReturn              = "return"
	UsageCondition           = "condition"
	UsageLoopTarget          = "loop_target"
	UsageThrow               = "throw"
	UsageComprehension       = "comprehension"
	UsageAwait               = "await"
	UsageJSXElement          = "jsx_element"
	UsageComment             = "comment"
	UsageDocstring           = "docstring"
	UsageReference           = "reference"
)

// ReferenceInfo is one usage site of a target declaration.
type ReferenceInfo struct {
	FilePath           string  `json:"filePath"`
	StartOffset        int     `json:"startOffset"`
	EndOffset          int     `json:"endOffset"`
	LineNumber         int     `json:"lineNumber"`
	UsageType          string  `json:"usageType"`
	ElementText        string  `json:"elementText"`
	Preview            string  `json:"preview"`
	ContainingMethod   *string `json:"containingMethod,omitempty"`
	ContainingClass    *string `json:"containingClass,omitempty"`
	IsInTestCode       bool    `json:"isInTestCode"`
	IsInComment        bool    `json:"isInComment"`
	AccessModifier     *string `json:"accessModifier,omitempty"`
	SurroundingContext *string `json:"surroundingContext,omitempty"`
	DataFlowContext    *string `json:"dataFlowContext,omitempty"`
	IsInDeprecatedCode bool    `json:"isInDeprecatedCode"`
}

// ReferenceSummary aggregates counts over a reference set.
type ReferenceSummary struct {
	TotalReferences      int     `json:"totalReferences"`
	FileCount            int     `json:"fileCount"`
	HasTestUsages        bool    `json:"hasTestUsages"`
	PrimaryUsageLocation *string `json:"primaryUsageLocation,omitempty"`
	DeprecatedUsageCount int     `json:"deprecatedUsageCount"`
}

// GroupedReferencesResult groups references by usage type with insights.
type GroupedReferencesResult struct {
	Summary       ReferenceSummary            `json:"summary"`
	UsagesByType  map[string][]*ReferenceInfo `json:"usagesByType"`
	Insights      []string                    `json:"insights"`
	AllReferences []*ReferenceInfo            `json:"allReferences"`
}

// HoverInfo is the display bundle for one element.
type HoverInfo struct {
	ElementName        string   `json:"elementName"`
	ElementType        string   `json:"elementType"`
	Type               *string  `json:"type,omitempty"`
	PresentableText    *string  `json:"presentableText,omitempty"`
	JavaDoc            *string  `json:"javaDoc,omitempty"`
	Signature          *string  `json:"signature,omitempty"`
	Modifiers          []string `json:"modifiers"`
	SuperTypes         []string `json:"superTypes"`
	ImplementedBy      []string `json:"implementedBy"`
	OverriddenBy       []string `json:"overriddenBy"`
	CalledByCount      int      `json:"calledByCount"` // call sites for callables, all usages for variables
	Complexity         *int     `json:"complexity,omitempty"`
	ThrowsExceptions   []string `json:"throwsExceptions"`
	IsDeprecated       bool     `json:"isDeprecated"`
	DeprecationMessage *string  `json:"deprecationMessage,omitempty"`
	Since              *string  `json:"since,omitempty"`
	SeeAlso            []string `json:"seeAlso"`
	FilePath           string   `json:"filePath,omitempty"`
	LineNumber         int      `json:"lineNumber,omitempty"`
}

// ExtractOptions filters symbol extraction.
type ExtractOptions struct {
	// SymbolTypes restricts output to these kinds; empty means all kinds.
	SymbolTypes      []SymbolKind
	IncludePrivate   bool
	IncludeSynthetic bool
	IncludeImports   bool
}

// DefaultExtractOptions includes everything.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{IncludePrivate: true, IncludeSynthetic: true, IncludeImports: true}
}

// Allows reports whether a symbol of the given kind passes the kind filter.
func (o ExtractOptions) Allows(kind SymbolKind) bool {
	if kind == SymbolKindImport && !o.IncludeImports {
		return false
	}
	if len(o.SymbolTypes) == 0 {
		return true
	}
	for _, k := range o.SymbolTypes {
		if k == kind {
			return true
		}
	}
	return false
}

// ReferenceOptions controls reference search.
type ReferenceOptions struct {
	IncludeDeclaration bool
	IncludeComments    bool
}
