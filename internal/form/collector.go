package form

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/liver-report/internal/model"
	apperrors "github.com/jwalitptl/liver-report/pkg/errors"
)

var validate = validator.New()

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	hexPrefix   = regexp.MustCompile(`^([+-]?)0[xX]([0-9a-fA-F]*)`)
)

// Collect builds a PatientRecord from the raw form values. The only hard
// requirement is a non-blank patient name; numeric values that do not
// parse are left nil.
func Collect(in model.FormInput) (model.PatientRecord, error) {
	rec := model.PatientRecord{
		PatientName:    strings.TrimSpace(in.Get(model.FieldPatientName)),
		Age:            parseFloat(in.Get(model.FieldAge)),
		Gender:         parseInt(in.Get(model.FieldGender)),
		TotalBilirubin: parseFloat(in.Get(model.FieldTotalBilirubin)),
		AlkPhos:        parseFloat(in.Get(model.FieldAlkPhos)),
		Albumin:        parseFloat(in.Get(model.FieldAlbumin)),
		Prothrombin:    parseFloat(in.Get(model.FieldProthrombin)),
		Platelets:      parseFloat(in.Get(model.FieldPlatelets)),
		SGOT:           parseFloat(in.Get(model.FieldSGOT)),
		Cholesterol:    parseFloat(in.Get(model.FieldCholesterol)),
		Triglycerides:  parseFloat(in.Get(model.FieldTriglycerides)),
		Copper:         parseFloat(in.Get(model.FieldCopper)),
		Ascites:        parseInt(in.Get(model.FieldAscites)),
		Hepatomegaly:   parseInt(in.Get(model.FieldHepatomegaly)),
		Spiders:        parseInt(in.Get(model.FieldSpiders)),
		Edema:          parseInt(in.Get(model.FieldEdema)),
	}

	if err := validate.Struct(rec); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range errs {
				if e.StructField() == "PatientName" {
					return model.PatientRecord{}, apperrors.MissingName()
				}
			}
		}
		return model.PatientRecord{}, apperrors.Internal(err)
	}
	return rec, nil
}

// parseFloat takes the longest leading decimal number, ignoring any
// trailing text ("12.5 mg" -> 12.5).
func parseFloat(s string) *float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// parseInt takes the leading integer ("3.7" -> 3, "0x1f" -> 31, "0xg" -> nil). Values
// that do not fit in an int are left nil rather than rounded to a float.
func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if m := hexPrefix.FindStringSubmatch(s); m != nil {
		if m[2] == "" {
			return nil
		}
		v, err := strconv.ParseInt(m[1]+m[2], 16, strconv.IntSize)
		if err != nil {
			return nil
		}
		n := int(v)
		return &n
	}

	m := intPrefix.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &v
}
