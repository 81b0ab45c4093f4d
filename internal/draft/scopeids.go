package draft

// ScopeIDs numbers the scopes an engine opens. Ids increase strictly in
// the order scopes are entered, so a nested scope always has a larger id
// than the scopes enclosing it, even though it closes first.
//
// A ScopeIDs belongs to one Engine and follows its goroutine rule.
type ScopeIDs struct {
	last int64
}

// NewScopeIDs returns a counter whose first id is after+1.
func NewScopeIDs(after int64) *ScopeIDs {
	return &ScopeIDs{last: after}
}

func (c *ScopeIDs) next() int64 {
	c.last++
	return c.last
}

// Last returns the most recently issued id.
func (c *ScopeIDs) Last() int64 {
	return c.last
}
