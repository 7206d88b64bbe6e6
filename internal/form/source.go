package form

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/jwalitptl/liver-report/internal/model"
)

// FromValues picks the known form fields out of url.Values. Unknown keys
// are dropped.
func FromValues(values url.Values) model.FormInput {
	in := make(model.FormInput, len(model.Fields))
	for _, f := range model.Fields {
		if v, ok := values[f.Name]; ok && len(v) > 0 {
			in[f.Name] = v[0]
		}
	}
	return in
}

// LoadFile reads a JSON object of field values from path.
func LoadFile(path string) (model.FormInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file: %w", err)
	}
	var in model.FormInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse form file %s: %w", path, err)
	}
	return in, nil
}

// Merge returns base overlaid with the non-empty values of over.
func Merge(base, over model.FormInput) model.FormInput {
	out := make(model.FormInput, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
