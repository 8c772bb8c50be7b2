package routing

// Select evaluates the rule table against a shot context and blacklist
// snapshot. It is pure and total: the terminal fallback rule matches every
// context, so a decision is always returned.
//
// Blacklist state is reconsulted on every call, never baked into the table;
// the same context can route differently as the blacklist grows. When every
// matching rule is filtered by the blacklist, the last rule wins regardless
// and the decision carries Forced=true so callers can raise a warning.
func Select(ctx ShotContext, blacklist Blacklist) Decision {
	for i, r := range ruleTable {
		if !r.match(ctx) {
			continue
		}
		decision := r.decide(ctx)
		if blacklist.Blocked(decision.Engine, ctx.CharacterIDs) {
			continue
		}
		decision.RuleIndex = i
		decision.RuleName = r.name
		return decision
	}

	last := len(ruleTable) - 1
	decision := ruleTable[last].decide(ctx)
	decision.RuleIndex = last
	decision.RuleName = ruleTable[last].name
	decision.Forced = true
	return decision
}
