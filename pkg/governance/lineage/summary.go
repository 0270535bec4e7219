package lineage

import "wealthos/governance/pkg/governance"

// Summary renders a one-sentence description of l for the explanation view.
func Summary(l *governance.Lineage, locale governance.Locale) string {
	p := locale.Printer()
	sources := len(SourceCollections(l))
	fields := len(SourceFields(l))
	steps := TransformStepCount(l)
	risky := len(HighRiskTransforms(l))

	switch locale {
	case governance.LocaleRU:
		s := p.Sprintf("Рассчитано из источников: %d (полей: %d), шагов обработки: %d.", sources, fields, steps)
		if risky > 0 {
			s += p.Sprintf(" Шагов с высоким риском: %d.", risky)
		}
		return s
	case governance.LocaleUK:
		s := p.Sprintf("Розраховано з джерел: %d (полів: %d), кроків обробки: %d.", sources, fields, steps)
		if risky > 0 {
			s += p.Sprintf(" Кроків з високим ризиком: %d.", risky)
		}
		return s
	default:
		s := p.Sprintf("Computed from %d source(s) (%d field(s)) in %d processing step(s).", sources, fields, steps)
		if risky > 0 {
			s += p.Sprintf(" %d step(s) flagged high risk.", risky)
		}
		return s
	}
}
