package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Fecha acepta tanto timestamps RFC3339 como fechas "2006-01-02"
// (el backend usa las dos: createdAt vs fechaVencimiento de un lote).
type Fecha struct {
	time.Time
}

var fechaLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func (f *Fecha) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("fecha: %w", err)
	}
	if s == "" {
		f.Time = time.Time{}
		return nil
	}
	for _, layout := range fechaLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t
			return nil
		}
	}
	return fmt.Errorf("fecha: formato no reconocido %q", s)
}

func (f Fecha) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Format(time.RFC3339))
}
