package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Form field names, in the order the form presents them.
const (
	FieldPatientName    = "patient_name"
	FieldAge            = "age"
	FieldGender         = "gender"
	FieldTotalBilirubin = "total_bilirubin"
	FieldAlkPhos        = "alk_phos"
	FieldAlbumin        = "albumin"
	FieldProthrombin    = "prothrombin"
	FieldPlatelets      = "platelets"
	FieldSGOT           = "sgot"
	FieldCholesterol    = "cholesterol"
	FieldTriglycerides  = "triglycerides"
	FieldCopper         = "copper"
	FieldAscites        = "ascites"
	FieldHepatomegaly   = "hepatomegaly"
	FieldSpiders        = "spiders"
	FieldEdema          = "edema"
)

type FieldKind int

const (
	KindText FieldKind = iota
	KindFloat
	KindInt
)

type Field struct {
	Name  string
	Label string
	Kind  FieldKind
}

// Fields lists every form control in document order.
var Fields = []Field{
	{FieldPatientName, "Patient name", KindText},
	{FieldAge, "Age (years)", KindFloat},
	{FieldGender, "Gender (0 = female, 1 = male)", KindInt},
	{FieldTotalBilirubin, "Total bilirubin (mg/dl)", KindFloat},
	{FieldAlkPhos, "Alkaline phosphatase (U/l)", KindFloat},
	{FieldAlbumin, "Albumin (g/dl)", KindFloat},
	{FieldProthrombin, "Prothrombin time (s)", KindFloat},
	{FieldPlatelets, "Platelets (per ml/1000)", KindFloat},
	{FieldSGOT, "SGOT (U/ml)", KindFloat},
	{FieldCholesterol, "Cholesterol (mg/dl)", KindFloat},
	{FieldTriglycerides, "Triglycerides (mg/dl)", KindFloat},
	{FieldCopper, "Urine copper (ug/day)", KindFloat},
	{FieldAscites, "Ascites (0 = no, 1 = yes)", KindInt},
	{FieldHepatomegaly, "Hepatomegaly (0 = no, 1 = yes)", KindInt},
	{FieldSpiders, "Spiders (0 = no, 1 = yes)", KindInt},
	{FieldEdema, "Edema (0 = no, 1 = slight, 2 = yes)", KindInt},
}

// LookupField returns the field definition for name.
func LookupField(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FormInput holds the raw, uncoerced value of each form control.
type FormInput map[string]string

func (in FormInput) Get(name string) string {
	if in == nil {
		return ""
	}
	return in[name]
}

// UnmarshalJSON accepts strings, numbers and nulls so a page can post
// either raw control values or already-typed JSON.
func (in *FormInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(FormInput, len(raw))
	for k, v := range raw {
		s := strings.TrimSpace(string(v))
		switch {
		case s == "null":
			out[k] = ""
		case strings.HasPrefix(s, `"`):
			var str string
			if err := json.Unmarshal(v, &str); err != nil {
				return fmt.Errorf("field %s: %w", k, err)
			}
			out[k] = str
		default:
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				return fmt.Errorf("field %s: unsupported value %s", k, s)
			}
			out[k] = s
		}
	}
	*in = out
	return nil
}

// PatientRecord is the typed record posted to the prediction endpoint.
// Numeric fields that did not parse are nil and encode as JSON null.
type PatientRecord struct {
	PatientName    string   `json:"patient_name" validate:"required"`
	Age            *float64 `json:"age"`
	Gender         *int     `json:"gender"`
	TotalBilirubin *float64 `json:"total_bilirubin"`
	AlkPhos        *float64 `json:"alk_phos"`
	Albumin        *float64 `json:"albumin"`
	Prothrombin    *float64 `json:"prothrombin"`
	Platelets      *float64 `json:"platelets"`
	SGOT           *float64 `json:"sgot"`
	Cholesterol    *float64 `json:"cholesterol"`
	Triglycerides  *float64 `json:"triglycerides"`
	Copper         *float64 `json:"copper"`
	Ascites        *int     `json:"ascites"`
	Hepatomegaly   *int     `json:"hepatomegaly"`
	Spiders        *int     `json:"spiders"`
	Edema          *int     `json:"edema"`
}
