package pricing

import "strings"

// Document is a raw quote document as decoded from JSON. Two shapes exist in
// the wild: the current one groups fields under material/tempo/vendas/
// custosExtras/config, while history records saved by older versions keep
// every field at the top level. Resolution always tries the nested path
// first and only then the flat legacy key, because both shapes are present
// in stored history.
type Document map[string]any

// MaterialSlot is one entry of a multi-material job.
type MaterialSlot struct {
	ID             string
	WeightGrams    float64
	PriceCostPerKg float64
}

// ExtraItem is an ad-hoc cost line (paint, inserts, courier surcharge...).
type ExtraItem struct {
	Label string
	Value float64
}

// Input is the canonical, fully numeric parameter set the engine computes
// from. Rates (TargetMargin, TaxRate, MarketplaceRate, DiscountRate,
// FailureRate) are fractions in [0,1].
type Input struct {
	RollCostPerKg   float64
	PartWeightGrams float64
	Slots           []MaterialSlot

	PrintHours    float64
	PrintMinutes  float64
	ManualHours   float64
	ManualMinutes float64

	Channel             string
	MarketplaceRate     float64
	MarketplaceFixedFee float64
	DiscountRate        float64

	PackagingCost float64
	ShippingCost  float64
	ExtraItems    []ExtraItem

	EnergyCostPerKwh     float64
	LaborHourRate        float64
	MachineHourRate      float64
	SetupFee             float64
	PrinterConsumptionKw float64
	TargetMargin         float64
	TaxRate              float64
	FailureRate          float64

	Quantity int
}

// Resolve reads a numeric field from the document: dotted nested path first,
// flat legacy key second, the raw value through ParseNumber. A key holding
// nil counts as absent.
func (d Document) Resolve(path, legacyKey string) float64 {
	if v, ok := d.lookup(path); ok {
		return ParseNumber(v)
	}
	if v, ok := d[legacyKey]; ok && v != nil {
		return ParseNumber(v)
	}
	return 0
}

// Has reports whether either the nested path or the flat legacy key carries
// a value. Used by callers that inject settings defaults for missing fields.
func (d Document) Has(path, legacyKey string) bool {
	if _, ok := d.lookup(path); ok {
		return true
	}
	v, ok := d[legacyKey]
	return ok && v != nil
}

func (d Document) lookup(path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = map[string]any(d)
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

func (d Document) resolveString(path, legacyKey string) string {
	if v, ok := d.lookup(path); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if s, ok := d[legacyKey].(string); ok {
		return s
	}
	return ""
}

func (d Document) resolveList(path, legacyKey string) []any {
	if v, ok := d.lookup(path); ok {
		if list, ok := v.([]any); ok {
			return list
		}
	}
	if list, ok := d[legacyKey].([]any); ok {
		return list
	}
	return nil
}

// Normalize maps either document shape into the canonical Input. Missing or
// malformed fields resolve to zero; normalization never fails.
func Normalize(doc Document) Input {
	in := Input{
		RollCostPerKg:   doc.Resolve("material.custoRolo", "custoRolo"),
		PartWeightGrams: doc.Resolve("material.pesoPeca", "pesoPeca"),
		Slots:           normalizeSlots(doc.resolveList("material.slots", "slots")),

		PrintHours:    doc.Resolve("tempo.horasImpressao", "horasImpressao"),
		PrintMinutes:  doc.Resolve("tempo.minutosImpressao", "minutosImpressao"),
		ManualHours:   doc.Resolve("tempo.horasManuais", "horasManuais"),
		ManualMinutes: doc.Resolve("tempo.minutosManuais", "minutosManuais"),

		Channel:             doc.resolveString("vendas.canal", "canal"),
		MarketplaceRate:     doc.Resolve("vendas.percentualMarketplace", "percentualMarketplace"),
		MarketplaceFixedFee: doc.Resolve("vendas.taxaFixaMarketplace", "taxaFixaMarketplace"),
		DiscountRate:        doc.Resolve("vendas.desconto", "desconto"),

		PackagingCost: doc.Resolve("custosExtras.embalagem", "embalagem"),
		ShippingCost:  doc.Resolve("custosExtras.frete", "frete"),
		ExtraItems:    normalizeExtras(doc.resolveList("custosExtras.itens", "itensExtras")),

		EnergyCostPerKwh:     doc.Resolve("config.custoKwh", "custoKwh"),
		LaborHourRate:        doc.Resolve("config.valorHoraHumana", "valorHoraHumana"),
		MachineHourRate:      doc.Resolve("config.valorHoraMaquina", "valorHoraMaquina"),
		SetupFee:             doc.Resolve("config.taxaSetup", "taxaSetup"),
		PrinterConsumptionKw: doc.Resolve("config.consumoImpressora", "consumoImpressora"),
		TargetMargin:         doc.Resolve("config.margemLucro", "margemLucro"),
		TaxRate:              doc.Resolve("config.impostos", "impostos"),
		FailureRate:          doc.Resolve("config.taxaFalha", "taxaFalha"),
	}

	in.Quantity = clampQuantity(doc.Resolve("quantidade", "quantidade"))

	return in
}

func normalizeSlots(raw []any) []MaterialSlot {
	if len(raw) == 0 {
		return nil
	}
	slots := make([]MaterialSlot, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["id"].(string)
		slots = append(slots, MaterialSlot{
			ID:             id,
			WeightGrams:    ParseNumber(m["peso"]),
			PriceCostPerKg: ParseNumber(m["custoKg"]),
		})
	}
	return slots
}

func normalizeExtras(raw []any) []ExtraItem {
	if len(raw) == 0 {
		return nil
	}
	items := make([]ExtraItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		label, _ := m["nome"].(string)
		items = append(items, ExtraItem{
			Label: label,
			Value: ParseNumber(m["valor"]),
		})
	}
	return items
}

func clampQuantity(raw float64) int {
	if raw < 1 {
		return 1
	}
	return int(raw)
}
