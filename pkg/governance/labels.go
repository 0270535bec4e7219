package governance

// Display labels. Each enum maps to text through an exhaustive switch per
// locale; an unknown value falls through to its raw string.

// Label returns the display text for c in l.
func (c Confidence) Label(l Locale) string {
	switch l {
	case LocaleRU:
		switch c {
		case ConfidenceHigh:
			return "Высокая"
		case ConfidenceMedium:
			return "Средняя"
		case ConfidenceLow:
			return "Низкая"
		}
	case LocaleUK:
		switch c {
		case ConfidenceHigh:
			return "Висока"
		case ConfidenceMedium:
			return "Середня"
		case ConfidenceLow:
			return "Низька"
		}
	default:
		switch c {
		case ConfidenceHigh:
			return "High"
		case ConfidenceMedium:
			return "Medium"
		case ConfidenceLow:
			return "Low"
		}
	}
	return string(c)
}

// Label returns the display text for s in l.
func (s Severity) Label(l Locale) string {
	switch l {
	case LocaleRU:
		switch s {
		case SeverityLow:
			return "Низкая"
		case SeverityMedium:
			return "Средняя"
		case SeverityHigh:
			return "Высокая"
		case SeverityCritical:
			return "Критическая"
		}
	case LocaleUK:
		switch s {
		case SeverityLow:
			return "Низька"
		case SeverityMedium:
			return "Середня"
		case SeverityHigh:
			return "Висока"
		case SeverityCritical:
			return "Критична"
		}
	default:
		switch s {
		case SeverityLow:
			return "Low"
		case SeverityMedium:
			return "Medium"
		case SeverityHigh:
			return "High"
		case SeverityCritical:
			return "Critical"
		}
	}
	return string(s)
}

// Label returns the display text for s in l.
func (s ReconStatus) Label(l Locale) string {
	switch l {
	case LocaleRU:
		switch s {
		case ReconOK:
			return "Сверено"
		case ReconBreak:
			return "Расхождение"
		case ReconPending:
			return "Ожидает"
		}
	case LocaleUK:
		switch s {
		case ReconOK:
			return "Звірено"
		case ReconBreak:
			return "Розбіжність"
		case ReconPending:
			return "Очікує"
		}
	default:
		switch s {
		case ReconOK:
			return "Matched"
		case ReconBreak:
			return "Break"
		case ReconPending:
			return "Pending"
		}
	}
	return string(s)
}

// Label returns the display text for s in l.
func (s OverrideStatus) Label(l Locale) string {
	switch l {
	case LocaleRU:
		switch s {
		case OverrideDraft:
			return "Черновик"
		case OverridePending:
			return "На согласовании"
		case OverrideApproved:
			return "Одобрено"
		case OverrideRejected:
			return "Отклонено"
		case OverrideApplied:
			return "Применено"
		}
	case LocaleUK:
		switch s {
		case OverrideDraft:
			return "Чернетка"
		case OverridePending:
			return "На погодженні"
		case OverrideApproved:
			return "Схвалено"
		case OverrideRejected:
			return "Відхилено"
		case OverrideApplied:
			return "Застосовано"
		}
	default:
		switch s {
		case OverrideDraft:
			return "Draft"
		case OverridePending:
			return "Pending approval"
		case OverrideApproved:
			return "Approved"
		case OverrideRejected:
			return "Rejected"
		case OverrideApplied:
			return "Applied"
		}
	}
	return string(s)
}

// Label returns the display text for b in l.
func (b TrustBadge) Label(l Locale) string {
	switch l {
	case LocaleRU:
		switch b {
		case TrustVerified:
			return "Проверено"
		case TrustEstimated:
			return "Оценка"
		case TrustStale:
			return "Устарело"
		}
	case LocaleUK:
		switch b {
		case TrustVerified:
			return "Перевірено"
		case TrustEstimated:
			return "Оцінка"
		case TrustStale:
			return "Застаріло"
		}
	default:
		switch b {
		case TrustVerified:
			return "Verified"
		case TrustEstimated:
			return "Estimated"
		case TrustStale:
			return "Stale"
		}
	}
	return string(b)
}

// Label returns the display text for q in l.
func (q QualityLevel) Label(l Locale) string {
	switch l {
	case LocaleRU:
		switch q {
		case QualityHigh:
			return "Высокое качество"
		case QualityMedium:
			return "Среднее качество"
		case QualityLow:
			return "Низкое качество"
		}
	case LocaleUK:
		switch q {
		case QualityHigh:
			return "Висока якість"
		case QualityMedium:
			return "Середня якість"
		case QualityLow:
			return "Низька якість"
		}
	default:
		switch q {
		case QualityHigh:
			return "High quality"
		case QualityMedium:
			return "Medium quality"
		case QualityLow:
			return "Low quality"
		}
	}
	return string(q)
}

// Label returns the display text for d in l.
func (d Domain) Label(l Locale) string {
	switch l {
	case LocaleRU:
		switch d {
		case DomainNetWorth:
			return "Чистые активы"
		case DomainPerformance:
			return "Доходность"
		case DomainLiquidity:
			return "Ликвидность"
		case DomainGL:
			return "Главная книга"
		case DomainTax:
			return "Налоги"
		case DomainRisk:
			return "Риски"
		case DomainCompliance:
			return "Комплаенс"
		}
	case LocaleUK:
		switch d {
		case DomainNetWorth:
			return "Чисті активи"
		case DomainPerformance:
			return "Дохідність"
		case DomainLiquidity:
			return "Ліквідність"
		case DomainGL:
			return "Головна книга"
		case DomainTax:
			return "Податки"
		case DomainRisk:
			return "Ризики"
		case DomainCompliance:
			return "Комплаєнс"
		}
	default:
		switch d {
		case DomainNetWorth:
			return "Net worth"
		case DomainPerformance:
			return "Performance"
		case DomainLiquidity:
			return "Liquidity"
		case DomainGL:
			return "General ledger"
		case DomainTax:
			return "Tax"
		case DomainRisk:
			return "Risk"
		case DomainCompliance:
			return "Compliance"
		}
	}
	return string(d)
}
