package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/madebycotrim/printlog-sub001/internal/history"
	"github.com/madebycotrim/printlog-sub001/internal/pricing"
	"github.com/madebycotrim/printlog-sub001/internal/settings"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) errorJSON(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

// handleComputeQuote computes a quote from a raw document (nested or legacy
// flat shape). Settings defaults fill in whatever config fields the document
// does not carry.
func (s *server) handleComputeQuote(w http.ResponseWriter, r *http.Request) {
	var doc pricing.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.errorJSON(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := s.settings.Get()
	if err != nil {
		s.log.Error("failed to load settings", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to load settings")
		return
	}
	applyConfigDefaults(doc, st)

	render.JSON(w, r, pricing.ComputeDocument(doc))
}

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	st, err := s.settings.Get()
	if err != nil {
		s.log.Error("failed to load settings", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to load settings")
		return
	}
	render.JSON(w, r, st)
}

func (s *server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var st settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		s.errorJSON(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if field, ok := firstNegativeField(st); ok {
		s.errorJSON(w, r, http.StatusBadRequest, field+" must not be negative")
		return
	}

	if err := s.settings.Update(st); err != nil {
		s.log.Error("failed to update settings", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to update settings")
		return
	}
	render.JSON(w, r, st)
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	records, err := s.history.List(query)
	if err != nil {
		s.log.Error("failed to list quotes", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to list quotes")
		return
	}
	render.JSON(w, r, records)
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string           `json:"label"`
		Input pricing.Document `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorJSON(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Input == nil {
		s.errorJSON(w, r, http.StatusBadRequest, "input document is required")
		return
	}

	st, err := s.settings.Get()
	if err != nil {
		s.log.Error("failed to load settings", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to load settings")
		return
	}
	applyConfigDefaults(req.Input, st)

	result := pricing.ComputeDocument(req.Input)

	inputJSON, err := json.Marshal(req.Input)
	if err != nil {
		s.errorJSON(w, r, http.StatusBadRequest, "input document is not serializable")
		return
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		s.log.Error("failed to marshal result", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to save quote")
		return
	}

	rec, err := s.history.Save(strings.TrimSpace(req.Label), inputJSON, resultJSON)
	if err != nil {
		s.log.Error("failed to save quote", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to save quote")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, rec)
}

func (s *server) handleQuoteGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.history.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			s.errorJSON(w, r, http.StatusNotFound, "quote not found")
			return
		}
		s.log.Error("failed to load quote", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to load quote")
		return
	}
	render.JSON(w, r, rec)
}

// handleQuoteRecalculate regenerates the result snapshot of a stored quote
// from its input snapshot. The snapshot keeps the config values it was saved
// with; current settings are not reapplied.
func (s *server) handleQuoteRecalculate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.history.Get(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			s.errorJSON(w, r, http.StatusNotFound, "quote not found")
			return
		}
		s.log.Error("failed to load quote", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to load quote")
		return
	}

	var doc pricing.Document
	if err := json.Unmarshal(rec.Input, &doc); err != nil {
		s.log.Error("corrupt input snapshot", slog.String("id", id), slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "stored input snapshot is not readable")
		return
	}

	resultJSON, err := json.Marshal(pricing.ComputeDocument(doc))
	if err != nil {
		s.log.Error("failed to marshal result", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to recalculate quote")
		return
	}

	if err := s.history.UpdateResult(id, resultJSON); err != nil {
		s.log.Error("failed to store recalculated result", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to recalculate quote")
		return
	}

	rec, err = s.history.Get(id)
	if err != nil {
		s.log.Error("failed to reload quote", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to recalculate quote")
		return
	}
	render.JSON(w, r, rec)
}

func (s *server) handleQuoteStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorJSON(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		s.errorJSON(w, r, http.StatusBadRequest, "status is required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.history.UpdateStatus(id, status); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			s.errorJSON(w, r, http.StatusNotFound, "quote not found")
			return
		}
		s.log.Error("failed to update status", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to update status")
		return
	}

	rec, err := s.history.Get(id)
	if err != nil {
		s.log.Error("failed to reload quote", slog.String("error", err.Error()))
		s.errorJSON(w, r, http.StatusInternalServerError, "failed to update status")
		return
	}
	render.JSON(w, r, rec)
}

type convertResponse struct {
	Margin  float64 `json:"margin"`
	Markup  float64 `json:"markup"`
	Display string  `json:"display"`
}

// handleConvert converts between the two UI representations of the profit
// target. Exactly one of margin or markup must be given.
func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	marginRaw := r.URL.Query().Get("margin")
	markupRaw := r.URL.Query().Get("markup")

	switch {
	case marginRaw != "" && markupRaw == "":
		margin := pricing.ParseNumber(marginRaw)
		markup, ok := pricing.MarkupFromMargin(margin)
		if !ok {
			render.JSON(w, r, convertResponse{Margin: margin, Display: pricing.InvalidDisplay})
			return
		}
		render.JSON(w, r, convertResponse{
			Margin:  pricing.Round2(margin),
			Markup:  pricing.Round2(markup),
			Display: formatRate(markup),
		})
	case markupRaw != "" && marginRaw == "":
		markup := pricing.ParseNumber(markupRaw)
		margin := pricing.MarginFromMarkup(markup)
		render.JSON(w, r, convertResponse{
			Margin:  pricing.Round2(margin),
			Markup:  pricing.Round2(markup),
			Display: formatRate(margin),
		})
	default:
		s.errorJSON(w, r, http.StatusBadRequest, "pass exactly one of margin or markup")
	}
}

func formatRate(v float64) string {
	return strconv.FormatFloat(pricing.Round2(v), 'f', 2, 64)
}

// applyConfigDefaults fills missing config fields of a quote document from
// the settings singleton. Fields the document already carries, in either
// shape, are left alone.
func applyConfigDefaults(doc pricing.Document, st settings.Settings) {
	defaults := map[string]float64{
		"custoKwh":          st.EnergyCostPerKwh,
		"valorHoraHumana":   st.LaborHourRate,
		"valorHoraMaquina":  st.MachineHourRate,
		"taxaSetup":         st.SetupFee,
		"consumoImpressora": st.PrinterConsumptionKw,
		"margemLucro":       st.TargetMargin,
		"impostos":          st.TaxRate,
		"taxaFalha":         st.FailureRate,
	}

	group, ok := doc["config"].(map[string]any)
	if !ok {
		group = map[string]any{}
		doc["config"] = group
	}
	for key, value := range defaults {
		if doc.Has("config."+key, key) {
			continue
		}
		group[key] = value
	}
}

func firstNegativeField(st settings.Settings) (string, bool) {
	fields := []struct {
		name  string
		value float64
	}{
		{"custoKwh", st.EnergyCostPerKwh},
		{"valorHoraHumana", st.LaborHourRate},
		{"valorHoraMaquina", st.MachineHourRate},
		{"taxaSetup", st.SetupFee},
		{"consumoImpressora", st.PrinterConsumptionKw},
		{"margemLucro", st.TargetMargin},
		{"impostos", st.TaxRate},
		{"taxaFalha", st.FailureRate},
	}
	for _, f := range fields {
		if f.value < 0 {
			return f.name, true
		}
	}
	return "", false
}
