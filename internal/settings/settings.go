package settings

import (
	"database/sql"
	"errors"
	"fmt"
)

// Settings is the singleton set of shop defaults applied to every quote
// whose document does not carry its own config values. Rates are fractions
// in [0,1].
type Settings struct {
	EnergyCostPerKwh     float64 `json:"custoKwh"`
	LaborHourRate        float64 `json:"valorHoraHumana"`
	MachineHourRate      float64 `json:"valorHoraMaquina"`
	SetupFee             float64 `json:"taxaSetup"`
	PrinterConsumptionKw float64 `json:"consumoImpressora"`
	TargetMargin         float64 `json:"margemLucro"`
	TaxRate              float64 `json:"impostos"`
	FailureRate          float64 `json:"taxaFalha"`
}

// Store reads and writes the settings singleton row.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the settings singleton.
func (s *Store) Get() (Settings, error) {
	var st Settings
	err := s.db.QueryRow(`
		SELECT
			energy_cost_per_kwh,
			labor_hour_rate,
			machine_hour_rate,
			setup_fee,
			printer_consumption_kw,
			target_margin,
			tax_rate,
			failure_rate
		FROM settings
		WHERE id = 1
	`).Scan(
		&st.EnergyCostPerKwh,
		&st.LaborHourRate,
		&st.MachineHourRate,
		&st.SetupFee,
		&st.PrinterConsumptionKw,
		&st.TargetMargin,
		&st.TaxRate,
		&st.FailureRate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, fmt.Errorf("settings singleton not found")
		}
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return st, nil
}

// Update replaces the settings singleton.
func (s *Store) Update(st Settings) error {
	_, err := s.db.Exec(`
		UPDATE settings
		SET
			energy_cost_per_kwh = ?,
			labor_hour_rate = ?,
			machine_hour_rate = ?,
			setup_fee = ?,
			printer_consumption_kw = ?,
			target_margin = ?,
			tax_rate = ?,
			failure_rate = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		st.EnergyCostPerKwh,
		st.LaborHourRate,
		st.MachineHourRate,
		st.SetupFee,
		st.PrinterConsumptionKw,
		st.TargetMargin,
		st.TaxRate,
		st.FailureRate,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}
