package recon

import "wealthos/governance/pkg/governance"

// SuggestBreakCauses returns the usual root causes for a break of the given
// reconciliation type. It is a static lookup with no inference.
func SuggestBreakCauses(t governance.ReconType, locale governance.Locale) []string {
	switch locale {
	case governance.LocaleRU:
		switch t {
		case governance.ReconIborAbor:
			return []string{
				"Разные источники цен или время оценки",
				"Сделки, учтенные только в одной книге",
				"Корпоративные действия, не отраженные в ABOR",
			}
		case governance.ReconCashBank:
			return []string{
				"Платежи в пути на дату выписки",
				"Банковские комиссии, не отраженные в учете",
				"Ошибка валютной конвертации",
			}
		case governance.ReconPositionsCustodian:
			return []string{
				"Неурегулированные сделки",
				"Корпоративные действия (сплит, дивиденд акциями)",
				"Неверное сопоставление идентификаторов инструментов",
			}
		case governance.ReconGLSubledger:
			return []string{
				"Ручные проводки в главной книге",
				"Несовпадение отчетных периодов",
				"Ошибки в плане счетов",
			}
		}
	case governance.LocaleUK:
		switch t {
		case governance.ReconIborAbor:
			return []string{
				"Різні джерела цін або час оцінки",
				"Угоди, враховані лише в одній книзі",
				"Корпоративні дії, не відображені в ABOR",
			}
		case governance.ReconCashBank:
			return []string{
				"Платежі в дорозі на дату виписки",
				"Банківські комісії, не відображені в обліку",
				"Помилка валютної конвертації",
			}
		case governance.ReconPositionsCustodian:
			return []string{
				"Неврегульовані угоди",
				"Корпоративні дії (спліт, дивіденд акціями)",
				"Невірне зіставлення ідентифікаторів інструментів",
			}
		case governance.ReconGLSubledger:
			return []string{
				"Ручні проводки в головній книзі",
				"Розбіжність звітних періодів",
				"Помилки в плані рахунків",
			}
		}
	default:
		switch t {
		case governance.ReconIborAbor:
			return []string{
				"Different pricing sources or valuation cut-off times",
				"Trades booked in only one book of record",
				"Corporate actions not yet reflected in ABOR",
			}
		case governance.ReconCashBank:
			return []string{
				"Payments in transit at statement date",
				"Bank fees not yet booked",
				"FX conversion differences",
			}
		case governance.ReconPositionsCustodian:
			return []string{
				"Unsettled trades",
				"Corporate actions (splits, stock dividends)",
				"Instrument identifier mapping errors",
			}
		case governance.ReconGLSubledger:
			return []string{
				"Manual journal entries in the general ledger",
				"Posting period mismatch",
				"Chart of accounts mapping errors",
			}
		}
	}
	return nil
}
