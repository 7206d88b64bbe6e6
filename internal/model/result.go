package model

// CachedResult is the last prediction response for a session, with the
// patient name written into the patient_name key. The upstream response
// shape is otherwise treated as opaque.
type CachedResult map[string]interface{}

// NewCachedResult copies resp and attaches the patient name.
func NewCachedResult(resp map[string]interface{}, patientName string) CachedResult {
	res := make(CachedResult, len(resp)+1)
	for k, v := range resp {
		res[k] = v
	}
	res[FieldPatientName] = patientName
	return res
}

func (r CachedResult) PatientName() string {
	return r.str(FieldPatientName)
}

// Stage is the predicted cirrhosis stage label, when the service sent one.
func (r CachedResult) Stage() string {
	return r.str("stage")
}

func (r CachedResult) Precautions() string {
	return r.str("precautions")
}

// FormData echoes the submitted record as returned by the service.
func (r CachedResult) FormData() map[string]interface{} {
	if m, ok := r["formData"].(map[string]interface{}); ok {
		return m
	}
	return nil
}

// Valid reports whether the result can be used for a report download.
func (r CachedResult) Valid() bool {
	return r != nil && r.PatientName() != ""
}

func (r CachedResult) str(key string) string {
	if r == nil {
		return ""
	}
	s, _ := r[key].(string)
	return s
}
