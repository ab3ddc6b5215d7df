package pricing

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestCompute_MaterialOnlyWithTargetMargin(t *testing.T) {
	in := Input{
		RollCostPerKg:   100,
		PartWeightGrams: 50,
		TargetMargin:    0.20,
		Quantity:        1,
	}

	result := Compute(in)

	nearlyEqual(t, "materialCost", result.MaterialCost, 5.00)
	nearlyEqual(t, "totalUnitCost", result.TotalUnitCost, 5.00)
	nearlyEqual(t, "listPrice", result.ListPrice, 6.25)
	nearlyEqual(t, "discountedPrice", result.DiscountedPrice, 6.25)
	nearlyEqual(t, "netProfit", result.NetProfit, 1.25)
	nearlyEqual(t, "effectiveMarginPercent", result.EffectiveMarginPercent, 20)
}

func TestCompute_DiscountLowersProfitNotListPrice(t *testing.T) {
	in := Input{
		RollCostPerKg:   100,
		PartWeightGrams: 50,
		TargetMargin:    0.20,
		DiscountRate:    0.10,
		Quantity:        1,
	}

	result := Compute(in)

	nearlyEqual(t, "listPrice", result.ListPrice, 6.25)
	nearlyEqual(t, "discountedPrice", result.DiscountedPrice, 5.63)
	nearlyEqual(t, "netProfit", result.NetProfit, 0.63)
	nearlyEqual(t, "effectiveMarginPercent", result.EffectiveMarginPercent, 11.11)
}

func TestCompute_ListPriceInvariantUnderDiscount(t *testing.T) {
	base := Input{
		RollCostPerKg:        40,
		PartWeightGrams:      200,
		PrintHours:           3,
		MachineHourRate:      12,
		EnergyCostPerKwh:     0.9,
		PrinterConsumptionKw: 0.3,
		TargetMargin:         0.25,
		TaxRate:              0.08,
		MarketplaceRate:      0.12,
		MarketplaceFixedFee:  2,
		Quantity:             1,
	}

	for _, discount := range []float64{0, 0.05, 0.15, 0.5, 0.9} {
		in := base
		in.DiscountRate = discount
		result := Compute(in)
		if result.ListPrice != Compute(base).ListPrice {
			t.Fatalf("listPrice changed under discount %v: %v", discount, result.ListPrice)
		}
	}
}

func TestCompute_OperationalCostsAmortizedOverQuantity(t *testing.T) {
	in := Input{
		PrintHours:           1,
		ManualHours:          1,
		PrinterConsumptionKw: 1,
		EnergyCostPerKwh:     2,
		MachineHourRate:      10,
		LaborHourRate:        20,
		SetupFee:             8,
		Quantity:             2,
	}

	result := Compute(in)

	nearlyEqual(t, "energyCost", result.EnergyCost, 1)
	nearlyEqual(t, "machineCost", result.MachineCost, 5)
	nearlyEqual(t, "maintenanceReserve", result.MaintenanceReserve, 0.5)
	nearlyEqual(t, "laborCost", result.LaborCost, 10)
	nearlyEqual(t, "setupCost", result.SetupCost, 4)
	nearlyEqual(t, "totalUnitCost", result.TotalUnitCost, 20.5)
}

func TestCompute_MinutesFoldIntoHours(t *testing.T) {
	in := Input{
		PrintHours:      1,
		PrintMinutes:    30,
		ManualMinutes:   45,
		MachineHourRate: 10,
		LaborHourRate:   40,
		Quantity:        1,
	}

	result := Compute(in)

	nearlyEqual(t, "totalPrintHours", result.TotalPrintHours, 1.5)
	nearlyEqual(t, "machineCost", result.MachineCost, 15)
	nearlyEqual(t, "laborCost", result.LaborCost, 30)
}

func TestCompute_RiskInflatesDirectCost(t *testing.T) {
	in := Input{
		RollCostPerKg:   100,
		PartWeightGrams: 100,
		FailureRate:     0.50,
		Quantity:        1,
	}

	result := Compute(in)

	nearlyEqual(t, "totalUnitCost", result.TotalUnitCost, 20)
	nearlyEqual(t, "riskReserve", result.RiskReserve, 10)
}

func TestCompute_ZeroFailureRateMeansNoReserve(t *testing.T) {
	in := Input{
		RollCostPerKg:   100,
		PartWeightGrams: 100,
		Quantity:        1,
	}

	result := Compute(in)

	nearlyEqual(t, "riskReserve", result.RiskReserve, 0)
	nearlyEqual(t, "totalUnitCost", result.TotalUnitCost, 10)
}

func TestCompute_FailureRateCappedAt95Percent(t *testing.T) {
	in := Input{
		RollCostPerKg:   100,
		PartWeightGrams: 100,
		FailureRate:     0.99,
		Quantity:        1,
	}

	result := Compute(in)

	// 10 / (1 - 0.95) = 200, reserve 190; no division blow-up.
	nearlyEqual(t, "totalUnitCost", result.TotalUnitCost, 200)
	nearlyEqual(t, "riskReserve", result.RiskReserve, 190)
}

func TestCompute_DivisorFlooredAtFivePercent(t *testing.T) {
	in := Input{
		RollCostPerKg:   100,
		PartWeightGrams: 100,
		TargetMargin:    0.90,
		TaxRate:         0.20,
		MarketplaceRate: 0.30,
		Quantity:        1,
	}

	result := Compute(in)

	// 1 - (0.2 + 0.3 + 0.9) is negative; the floor keeps the price finite.
	nearlyEqual(t, "listPrice", result.ListPrice, 200)
	if result.ListPrice <= 0 || math.IsInf(result.ListPrice, 0) {
		t.Fatalf("listPrice must stay finite and positive, got %v", result.ListPrice)
	}
}

func TestCompute_SingleSlotMatchesSinglePair(t *testing.T) {
	pair := Input{RollCostPerKg: 85, PartWeightGrams: 120, Quantity: 1}
	slotted := Input{
		Slots:    []MaterialSlot{{ID: "pla", WeightGrams: 120, PriceCostPerKg: 85}},
		Quantity: 1,
	}

	nearlyEqual(t, "materialCost", Compute(slotted).MaterialCost, Compute(pair).MaterialCost)
}

func TestCompute_MultiSlotSumsAllSlots(t *testing.T) {
	in := Input{
		// The single pair is ignored once slots are present.
		RollCostPerKg:   999,
		PartWeightGrams: 999,
		Slots: []MaterialSlot{
			{ID: "pla", WeightGrams: 100, PriceCostPerKg: 80},
			{ID: "tpu", WeightGrams: 50, PriceCostPerKg: 160},
		},
		Quantity: 1,
	}

	result := Compute(in)

	nearlyEqual(t, "materialCost", result.MaterialCost, 16)
}

func TestCompute_MarketplaceFixedFeeAmortizedAndReconciled(t *testing.T) {
	in := Input{
		RollCostPerKg:       100,
		PartWeightGrams:     100,
		MarketplaceRate:     0.10,
		MarketplaceFixedFee: 10,
		TargetMargin:        0.20,
		Quantity:            2,
	}

	result := Compute(in)

	// totalUnitCost 10, fee per unit 5, divisor 0.7.
	nearlyEqual(t, "listPrice", result.ListPrice, 21.43)
	nearlyEqual(t, "marketplaceFeeAmount", result.MarketplaceFeeAmount, 7.14)
}

func TestCompute_ExtrasAndOutboundCostsSkipRiskInflation(t *testing.T) {
	in := Input{
		RollCostPerKg:   100,
		PartWeightGrams: 50,
		FailureRate:     0.50,
		PackagingCost:   3,
		ShippingCost:    7,
		ExtraItems: []ExtraItem{
			{Label: "tinta", Value: 4},
			{Label: "parafusos", Value: 2},
		},
		Quantity: 2,
	}

	result := Compute(in)

	// direct 5 per unit, inflated to 10; packaging/shipping/extras added after.
	nearlyEqual(t, "riskReserve", result.RiskReserve, 5)
	nearlyEqual(t, "extraCostsTotal", result.ExtraCostsTotal, 3)
	nearlyEqual(t, "totalUnitCost", result.TotalUnitCost, 23)
}

func TestCompute_QuantityClampedToOne(t *testing.T) {
	for _, qty := range []int{0, -3} {
		in := Input{RollCostPerKg: 100, PartWeightGrams: 50, Quantity: qty}
		result := Compute(in)
		if result.Quantity != 1 {
			t.Fatalf("quantity %d not clamped, got %d", qty, result.Quantity)
		}
		nearlyEqual(t, "materialCost", result.MaterialCost, 5)
	}
}

func TestCompute_EffectiveMarginZeroWhenPriceZero(t *testing.T) {
	result := Compute(Input{Quantity: 1})

	nearlyEqual(t, "listPrice", result.ListPrice, 0)
	nearlyEqual(t, "effectiveMarginPercent", result.EffectiveMarginPercent, 0)
	if result.TotalUnitCost < 0 {
		t.Fatalf("totalUnitCost must never go negative, got %v", result.TotalUnitCost)
	}
}

func TestComputeDocument_NestedShape(t *testing.T) {
	doc := Document{
		"material": map[string]any{
			"custoRolo": "100",
			"pesoPeca":  "50",
		},
		"config": map[string]any{
			"margemLucro": 0.2,
		},
		"quantidade": 1,
	}

	result := ComputeDocument(doc)

	nearlyEqual(t, "materialCost", result.MaterialCost, 5)
	nearlyEqual(t, "listPrice", result.ListPrice, 6.25)
}

func TestComputeDocument_LegacyFlatShape(t *testing.T) {
	doc := Document{
		"custoRolo":   100.0,
		"pesoPeca":    50.0,
		"margemLucro": 0.2,
		"quantidade":  "abc",
	}

	result := ComputeDocument(doc)

	nearlyEqual(t, "listPrice", result.ListPrice, 6.25)
	if result.Quantity != 1 {
		t.Fatalf("garbage quantity must clamp to 1, got %d", result.Quantity)
	}
}
