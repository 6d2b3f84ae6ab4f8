package analyzer

import (
	"fmt"

	"github.com/standardbeagle/codenav/internal/types"
)

// insightRule contributes at most one observation about a reference set.
type insightRule func(s *refStats) (string, bool)

// insightRules are evaluated in order.
var insightRules = []insightRule{
	primaryLocationInsight,
	testUsageInsight,
	deprecatedUsageInsight,
	overrideInsight,
	propertyAccessInsight,
	missingAwaitInsight,
	instantiationInsight,
	readOnlyInsight,
	narrowVisibilityInsight,
	commentMentionInsight,
}

// refStats is the tally the insight rules read from.
type refStats struct {
	target       *types.DefinitionLocation
	total        int
	tests        int
	// usages and testUsages leave out the declaration itself
	usages       int
	testUsages   int
	deprecated   int
	byType       map[string][]*types.ReferenceInfo
	primary      string
	primaryCount int
	hasPrimary   bool
}

func (s *refStats) count(usages ...string) int {
	n := 0
	for _, u := range usages {
		n += len(s.byType[u])
	}
	return n
}

// GroupAndSummarize buckets refs by usage type and derives summary counts
// and insights. target may be nil, in which case kind-specific insights are
// skipped.
func GroupAndSummarize(refs []*types.ReferenceInfo, target *types.DefinitionLocation) *types.GroupedReferencesResult {
	if refs == nil {
		refs = []*types.ReferenceInfo{}
	}
	s := &refStats{target: target, total: len(refs), byType: make(map[string][]*types.ReferenceInfo)}
	files := make(map[string]bool)
	for _, r := range refs {
		s.byType[r.UsageType] = append(s.byType[r.UsageType], r)
		files[r.FilePath] = true
		if r.IsInTestCode {
			s.tests++
		}
		if r.UsageType != types.UsageDeclaration {
			s.usages++
			if r.IsInTestCode {
				s.testUsages++
			}
		}
		if r.IsInDeprecatedCode {
			s.deprecated++
		}
	}
	s.primary, s.primaryCount, s.hasPrimary = primaryLocation(refs)

	res := &types.GroupedReferencesResult{
		Summary: types.ReferenceSummary{
			TotalReferences:      s.total,
			FileCount:            len(files),
			HasTestUsages:        s.tests > 0,
			DeprecatedUsageCount: s.deprecated,
		},
		UsagesByType:  s.byType,
		Insights:      []string{},
		AllReferences: refs,
	}
	if s.hasPrimary {
		res.Summary.PrimaryUsageLocation = types.StringPtr(s.primary)
	}
	for _, rule := range insightRules {
		if text, ok := rule(s); ok {
			res.Insights = append(res.Insights, text)
		}
	}
	return res
}

// primaryLocation picks the non-test containing class with the most
// references. References outside any class count toward their file. Ties
// go to the location seen first.
func primaryLocation(refs []*types.ReferenceInfo) (string, int, bool) {
	counts := make(map[string]int)
	var order []string
	for _, r := range refs {
		if r.IsInTestCode || r.UsageType == types.UsageDeclaration {
			continue
		}
		loc := r.FilePath
		if r.ContainingClass != nil {
			loc = *r.ContainingClass
		}
		if counts[loc] == 0 {
			order = append(order, loc)
		}
		counts[loc]++
	}
	best, n := "", 0
	for _, loc := range order {
		if counts[loc] > n {
			best, n = loc, counts[loc]
		}
	}
	return best, n, n > 0
}

func primaryLocationInsight(s *refStats) (string, bool) {
	if !s.hasPrimary {
		return "", false
	}
	return fmt.Sprintf("Most used in %s (%d references)", s.primary, s.primaryCount), true
}

func testUsageInsight(s *refStats) (string, bool) {
	switch {
	case s.usages == 0:
		return "", false
	case s.testUsages == 0:
		return "No usages in test code: consider adding tests", true
	case s.usages > 5 && s.testUsages*5 < s.usages:
		return fmt.Sprintf("Low test coverage: only %d of %d references are in test code", s.testUsages, s.usages), true
	}
	return "", false
}

func deprecatedUsageInsight(s *refStats) (string, bool) {
	if s.deprecated == 0 {
		return "", false
	}
	return fmt.Sprintf("%d usage(s) from deprecated code: these call sites may be removed soon", s.deprecated), true
}

func overrideInsight(s *refStats) (string, bool) {
	if s.target == nil || !s.target.Type.IsCallable() {
		return "", false
	}
	n := s.count(types.UsageOverride)
	if n == 0 {
		return "", false
	}
	return fmt.Sprintf("Overridden in %d subclass(es): signature changes must be applied to every override", n), true
}

func propertyAccessInsight(s *refStats) (string, bool) {
	if s.target == nil {
		return "", false
	}
	access := s.count(types.UsagePropertyAccess)
	if access == 0 {
		return "", false
	}
	calls := s.count(types.UsageMethodCall, types.UsageFunctionCall)
	return fmt.Sprintf("Accessed directly as a property %d time(s) and through calls %d time(s)", access, calls), true
}

func missingAwaitInsight(s *refStats) (string, bool) {
	if s.target == nil || !isAsync(s.target) {
		return "", false
	}
	calls := s.count(types.UsageMethodCall, types.UsageFunctionCall, types.UsageAwait)
	if calls == 0 {
		return "", false
	}
	awaited := len(s.byType[types.UsageAwait])
	for _, u := range []string{types.UsageMethodCall, types.UsageFunctionCall} {
		for _, r := range s.byType[u] {
			if r.DataFlowContext != nil && *r.DataFlowContext == "awaited" {
				awaited++
			}
		}
	}
	if awaited*2 >= calls {
		return "", false
	}
	return fmt.Sprintf("Async but only %d of %d calls are awaited: check for missing await", awaited, calls), true
}

func isAsync(t *types.DefinitionLocation) bool {
	if t.Type == types.SymbolKindAsyncFunction {
		return true
	}
	return hasModifier(t.Modifiers, "async")
}

func instantiationInsight(s *refStats) (string, bool) {
	if s.target == nil || s.target.Type.Category() != types.CategoryType {
		return "", false
	}
	created := s.count(types.UsageConstructorCall)
	extended := s.count(types.UsageInheritance, types.UsageImplementation)
	if created+extended == 0 {
		return "", false
	}
	return fmt.Sprintf("Instantiated %d time(s), extended or implemented %d time(s)", created, extended), true
}

func readOnlyInsight(s *refStats) (string, bool) {
	t := s.target
	if t == nil || t.Type.Category() != types.CategoryVariable {
		return "", false
	}
	switch t.Type {
	case types.SymbolKindConstant, types.SymbolKindEnumMember:
		return "", false
	}
	for _, m := range []string{"final", "const", "readonly"} {
		if hasModifier(t.Modifiers, m) {
			return "", false
		}
	}
	writes := s.count(types.UsageWrite, types.UsageFieldWrite, types.UsageAugmentedAssignment, types.UsageDelete)
	reads := s.count(types.UsageRead, types.UsageFieldRead, types.UsagePropertyAccess, types.UsageArgument,
		types.UsageReturn, types.UsageCondition, types.UsageReference)
	if writes > 0 || reads == 0 {
		return "", false
	}
	return "Never reassigned after initialization: consider making it constant/final", true
}

func narrowVisibilityInsight(s *refStats) (string, bool) {
	t := s.target
	if t == nil || !t.Visibility.IsNarrow() {
		return "", false
	}
	files := make(map[string]bool)
	for u, refs := range s.byType {
		if u == types.UsageDeclaration || u == types.UsageComment || u == types.UsageDocstring {
			continue
		}
		for _, r := range refs {
			if r.FilePath != t.FilePath {
				files[r.FilePath] = true
			}
		}
	}
	if len(files) == 0 {
		return "", false
	}
	return fmt.Sprintf("%s member is used from %d other file(s)", label(string(t.Visibility)), len(files)), true
}

func commentMentionInsight(s *refStats) (string, bool) {
	n := s.count(types.UsageComment, types.UsageDocstring)
	if n == 0 {
		return "", false
	}
	return fmt.Sprintf("Mentioned in %d comment(s) or docstring(s)", n), true
}
