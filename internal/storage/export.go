package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/pinnbar/internal/pinn"
)

// Profile is a predicted displacement field next to the analytic one.
type Profile struct {
	X         []float64 `json:"x"`
	Predicted []float64 `json:"predicted"`
	Exact     []float64 `json:"exact"`
}

func NewProfile(model *pinn.Model, xs []float64) Profile {
	return Profile{
		X:         xs,
		Predicted: model.Displacements(xs),
		Exact:     model.Exact(xs),
	}
}

func (p Profile) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "u_pred", "u_exact", "error"}); err != nil {
		return err
	}
	for i := range p.X {
		row := []string{
			strconv.FormatFloat(p.X[i], 'f', 6, 64),
			strconv.FormatFloat(p.Predicted[i], 'g', 10, 64),
			strconv.FormatFloat(p.Exact[i], 'g', 10, 64),
			strconv.FormatFloat(p.Predicted[i]-p.Exact[i], 'g', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Run     RunMetadata `json:"run"`
	History []pinn.Loss `json:"history"`
	Profile Profile     `json:"profile"`
}

func ExportJSON(w io.Writer, meta RunMetadata, history []pinn.Loss, profile Profile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, History: history, Profile: profile})
}
