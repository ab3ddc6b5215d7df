package pricing

// Business policy constants. The maintenance surcharge and the divisor floor
// are fixed values carried over from the shop's pricing policy, not derived
// from any model.
const (
	// maintenanceRate is the surcharge on machine cost reserved for
	// unscheduled wear.
	maintenanceRate = 0.10
	// maxFailureRate caps the failure-rate inflator so the cost division
	// stays finite.
	maxFailureRate = 0.95
	// minDivisor floors the price-formation divisor so combined
	// tax + marketplace + margin rates above 95% still yield a finite
	// positive price.
	minDivisor = 0.05
)

// Result is the per-unit quote breakdown. Every money value is rounded to
// two decimals with Round2.
type Result struct {
	MaterialCost         float64 `json:"materialCost"`
	EnergyCost           float64 `json:"energyCost"`
	MachineCost          float64 `json:"machineCost"`
	MaintenanceReserve   float64 `json:"maintenanceReserve"`
	LaborCost            float64 `json:"laborCost"`
	SetupCost            float64 `json:"setupCost"`
	PackagingCost        float64 `json:"packagingCost"`
	ShippingCost         float64 `json:"shippingCost"`
	ExtraCostsTotal      float64 `json:"extraCostsTotal"`
	RiskReserve          float64 `json:"riskReserve"`
	TaxAmount            float64 `json:"taxAmount"`
	MarketplaceFeeAmount float64 `json:"marketplaceFeeAmount"`

	TotalUnitCost          float64 `json:"totalUnitCost"`
	ListPrice              float64 `json:"listPrice"`
	DiscountedPrice        float64 `json:"discountedPrice"`
	NetProfit              float64 `json:"netProfit"`
	EffectiveMarginPercent float64 `json:"effectiveMarginPercent"`
	TotalPrintHours        float64 `json:"totalPrintHours"`
	Quantity               int     `json:"quantity"`
}

// Compute turns a canonical Input into a full quote Result. It is a pure
// function: no I/O, no state, and it never fails — missing data contributes
// zero, pathological rates saturate at their clamps.
func Compute(in Input) Result {
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}
	q := float64(qty)

	material := materialCost(in)

	printHours := in.PrintHours + in.PrintMinutes/60
	manualHours := in.ManualHours + in.ManualMinutes/60

	energy := (printHours * in.PrinterConsumptionKw * in.EnergyCostPerKwh) / q
	machine := (printHours * in.MachineHourRate) / q
	maintenance := machine * maintenanceRate
	labor := (manualHours * in.LaborHourRate) / q
	setup := in.SetupFee / q

	directCost := material + energy + machine + maintenance + labor + setup

	// Expected scrap inflates the whole direct cost instead of adding a
	// flat reserve, so the reserve scales with job cost.
	failureRate := in.FailureRate
	if failureRate < 0 {
		failureRate = 0
	}
	if failureRate > maxFailureRate {
		failureRate = maxFailureRate
	}
	costWithRisk := directCost / (1 - failureRate)
	riskReserve := costWithRisk - directCost

	var extrasSum float64
	for _, item := range in.ExtraItems {
		extrasSum += item.Value
	}
	extrasPerUnit := extrasSum / q

	// Packaging and shipping are charged per unit as-is; they are outbound
	// costs and do not get the failure inflation.
	totalUnitCost := costWithRisk + in.PackagingCost + in.ShippingCost + extrasPerUnit

	// Divisor method: solve for the price at which tax, marketplace
	// commission and the target margin, all taken as a share of that same
	// price, leave exactly the unit cost behind.
	divisor := 1 - (in.TaxRate + in.MarketplaceRate + in.TargetMargin)
	if divisor < minDivisor {
		divisor = minDivisor
	}
	feePerUnit := in.MarketplaceFixedFee / q
	listPrice := (totalUnitCost + feePerUnit) / divisor

	// The discount is a sales-side adjustment: the list price stays put and
	// tax/fee/profit are recomputed against the price actually charged.
	discountedPrice := listPrice * (1 - in.DiscountRate)
	taxAmount := discountedPrice * in.TaxRate
	marketplaceFee := discountedPrice*in.MarketplaceRate + feePerUnit
	netProfit := discountedPrice - taxAmount - marketplaceFee - totalUnitCost

	effectiveMargin := 0.0
	if discountedPrice > 0 {
		effectiveMargin = (netProfit / discountedPrice) * 100
	}

	return Result{
		MaterialCost:         Round2(material),
		EnergyCost:           Round2(energy),
		MachineCost:          Round2(machine),
		MaintenanceReserve:   Round2(maintenance),
		LaborCost:            Round2(labor),
		SetupCost:            Round2(setup),
		PackagingCost:        Round2(in.PackagingCost),
		ShippingCost:         Round2(in.ShippingCost),
		ExtraCostsTotal:      Round2(extrasPerUnit),
		RiskReserve:          Round2(riskReserve),
		TaxAmount:            Round2(taxAmount),
		MarketplaceFeeAmount: Round2(marketplaceFee),

		TotalUnitCost:          Round2(totalUnitCost),
		ListPrice:              Round2(listPrice),
		DiscountedPrice:        Round2(discountedPrice),
		NetProfit:              Round2(netProfit),
		EffectiveMarginPercent: Round2(effectiveMargin),
		TotalPrintHours:        Round2(printHours),
		Quantity:               qty,
	}
}

// materialCost prefers the multi-material slot list; the single
// (roll price, part weight) pair is the fallback for simple jobs. Slot
// weights already represent full per-unit consumption, so they are not
// divided by quantity.
func materialCost(in Input) float64 {
	if len(in.Slots) > 0 {
		var total float64
		for _, slot := range in.Slots {
			total += (slot.PriceCostPerKg / 1000) * slot.WeightGrams
		}
		return total
	}
	return (in.RollCostPerKg / 1000) * in.PartWeightGrams
}

// ComputeDocument normalizes a raw quote document and computes it. A recover
// guard substitutes the zero result on an unexpected internal panic, so a
// malformed document can never take the caller down.
func ComputeDocument(doc Document) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Quantity: 1}
		}
	}()
	res = Compute(Normalize(doc))
	return res
}
