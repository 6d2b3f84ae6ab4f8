package analyzer

// cyclomaticComplexity counts the decision points of a callable: one for
// the entry path plus each branch point in its body. Nested functions and
// types are measured on their own and do not contribute.
func cyclomaticComplexity(a Adapter, decl *Node) int {
	if decl == nil {
		return 1
	}
	complexity := 1
	decl.Walk(func(n *Node) bool {
		if n != decl && a.IsNestedUnit(n) {
			return false
		}
		complexity += a.BranchPoints(n)
		return true
	})
	return complexity
}
