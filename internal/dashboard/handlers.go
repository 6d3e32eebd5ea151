package dashboard

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"iris-app/internal/dataset"
	"iris-app/internal/ml"

	"github.com/rs/zerolog/log"
)

const maxPredictBody = 1 << 12

var templateFuncs = template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) },
}

type statRow struct {
	Name   string
	Values []float64
}

type pageData struct {
	Columns    []string
	Stats      []statRow
	Selected   []string
	Sliders    []Slider
	Species    []ml.Species
	Prediction *ml.Prediction
	Error      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Columns:  s.res.Dataset.Columns(),
		Selected: s.res.NewSelection().Columns(),
		Sliders:  Sliders(),
		Species:  ml.AllSpecies(),
	}
	for i, name := range dataset.StatNames {
		row := statRow{Name: name}
		for _, col := range s.res.Summary.Columns {
			row.Values = append(row.Values, col.Values()[i])
		}
		data.Stats = append(data.Stats, row)
	}

	if pred, err := s.res.Predict(DefaultInput()); err != nil {
		data.Error = err.Error()
	} else {
		data.Prediction = &pred
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to render dashboard page")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.res.Summary)
}

func (s *Server) handleSliders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Sliders())
}

// selectionFromQuery reads repeated col parameters. Without any col
// parameter the default selection applies; an explicit empty list selects
// nothing.
func (s *Server) selectionFromQuery(r *http.Request) (*Selection, error) {
	sel := s.res.NewSelection()
	cols, present := r.URL.Query()["col"]
	if !present {
		return sel, nil
	}
	nonEmpty := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	if err := sel.Set(nonEmpty); err != nil {
		return nil, err
	}
	return sel, nil
}

type scatterResponse struct {
	Columns []string     `json:"columns"`
	Chart   *ScatterSpec `json:"chart"`
}

func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selectionFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	spec, _ := BuildScatter(s.res.Dataset, sel)
	writeJSON(w, http.StatusOK, scatterResponse{Columns: sel.Columns(), Chart: spec})
}

func (s *Server) handleScatterPNG(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selectionFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	spec, ok := BuildScatter(s.res.Dataset, sel)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	img, err := s.res.Charts.PNG(spec)
	if err != nil {
		log.Error().Err(err).Str("chart", spec.Key()).Msg("Failed to render scatter plot")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPredictBody))
	if err != nil {
		writeError(w, err)
		return
	}

	in := DefaultInput()
	if len(body) > 0 {
		if err := json.Unmarshal(body, &in); err != nil {
			writeError(w, errors.Join(ErrBadValue, err))
			return
		}
	}

	pred, err := s.res.Predict(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

type modelResponse struct {
	Metadata ml.ModelMetadata `json:"metadata"`
	Source   string           `json:"source"`
	LoadedAt time.Time        `json:"loaded_at"`
	Species  []ml.Species     `json:"species"`
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	if _, err := s.res.Predictor(); err != nil {
		writeError(w, err)
		return
	}
	artifacts, _ := s.res.Loader.Load()
	writeJSON(w, http.StatusOK, modelResponse{
		Metadata: artifacts.Metadata,
		Source:   artifacts.Source,
		LoadedAt: artifacts.LoadedAt,
		Species:  ml.AllSpecies(),
	})
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	writeJSON(w, status, errorResponse{Error: err.Error(), Status: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
