package rules

import "wealthos/governance/pkg/governance"

// Matches applies the appliesTo precedence to one domain: AllKpis matches
// everything, otherwise a non-empty Domains list restricts, otherwise
// nothing is filtered. Collections and KpiIDs never take part.
func Matches(scope governance.RuleScope, domain governance.Domain) bool {
	if scope.AllKpis {
		return true
	}
	if len(scope.Domains) > 0 {
		for _, d := range scope.Domains {
			if d == domain {
				return true
			}
		}
		return false
	}
	return true
}

// FilterMetrics returns the metrics selected by scope.
func FilterMetrics(scope governance.RuleScope, metrics []governance.Kpi) []governance.Kpi {
	var out []governance.Kpi
	for _, m := range metrics {
		if Matches(scope, m.Domain) {
			out = append(out, m)
		}
	}
	return out
}

// FilterQualityScores returns the quality scores selected by scope.
func FilterQualityScores(scope governance.RuleScope, scores []governance.QualityScore) []governance.QualityScore {
	var out []governance.QualityScore
	for _, s := range scores {
		if Matches(scope, s.DomainKey) {
			out = append(out, s)
		}
	}
	return out
}

// ignoredSelectors lists the applies_to fields that were populated but had
// no effect on the evaluation of rule.
func ignoredSelectors(rule governance.Rule) []string {
	scope := rule.AppliesTo
	var warnings []string

	if rule.RuleTypeKey == governance.RuleReconThreshold {
		if scope.AllKpis || len(scope.Domains) > 0 || len(scope.Collections) > 0 || len(scope.KpiIDs) > 0 {
			warnings = append(warnings, "applies_to is ignored by recon_threshold rules")
		}
		return warnings
	}

	if scope.AllKpis && len(scope.Domains) > 0 {
		warnings = append(warnings, "applies_to.domains ignored because applies_to.all_kpis is set")
	}
	if len(scope.Collections) > 0 {
		warnings = append(warnings, "applies_to.collections is not supported and was ignored")
	}
	if len(scope.KpiIDs) > 0 {
		warnings = append(warnings, "applies_to.kpi_ids is not supported and was ignored")
	}
	return warnings
}
