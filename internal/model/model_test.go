package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormInputUnmarshal(t *testing.T) {
	var in FormInput
	err := json.Unmarshal([]byte(`{"patient_name":"Jane","age":52,"gender":"1","copper":null}`), &in)
	require.NoError(t, err)

	assert.Equal(t, "Jane", in.Get(FieldPatientName))
	assert.Equal(t, "52", in.Get(FieldAge))
	assert.Equal(t, "1", in.Get(FieldGender))
	assert.Equal(t, "", in.Get(FieldCopper))
	assert.Equal(t, "", FormInput(nil).Get(FieldAge))
}

func TestFormInputRejectsObjects(t *testing.T) {
	var in FormInput
	assert.Error(t, json.Unmarshal([]byte(`{"age":{"v":1}}`), &in))
}

func TestFieldsOrder(t *testing.T) {
	require.Len(t, Fields, 16)
	assert.Equal(t, FieldPatientName, Fields[0].Name)
	assert.Equal(t, FieldEdema, Fields[len(Fields)-1].Name)

	f, ok := LookupField(FieldSGOT)
	assert.True(t, ok)
	assert.Equal(t, KindFloat, f.Kind)
	_, ok = LookupField("unknown")
	assert.False(t, ok)
}

func TestCachedResult(t *testing.T) {
	resp := map[string]interface{}{
		"patient_name": "server side",
		"stage":        "Early Cirrhosis (Stage 1).",
		"precautions":  "Recommend salt restriction.",
		"formData":     map[string]interface{}{"age": 50.0},
	}
	res := NewCachedResult(resp, "Jane Doe")

	assert.Equal(t, "Jane Doe", res.PatientName())
	assert.Equal(t, "server side", resp["patient_name"])
	assert.Equal(t, "Early Cirrhosis (Stage 1).", res.Stage())
	assert.Equal(t, "Recommend salt restriction.", res.Precautions())
	assert.Equal(t, 50.0, res.FormData()["age"])
	assert.True(t, res.Valid())

	var empty CachedResult
	assert.False(t, empty.Valid())
	assert.Nil(t, empty.FormData())
	assert.False(t, NewCachedResult(nil, "").Valid())
}
