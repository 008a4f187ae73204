package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/livepeer/reframe-media/errors"
)

// decodeAndValidate reads the request body, validates it against schema,
// and JSON-decodes it into out. It writes the uniform VALIDATION_ERROR
// envelope and returns false on any failure, so handlers can just `return`
// when this returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, out interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		errors.WriteHTTPValidationError(w, "failed to read request body", nil)
		return false
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		errors.WriteHTTPValidationError(w, "malformed JSON body", nil)
		return false
	}
	if !result.Valid() {
		errors.WriteHTTPBadBodySchema(r.URL.Path, w, result.Errors())
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		errors.WriteHTTPValidationError(w, "failed to decode request body", nil)
		return false
	}
	return true
}

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return schema
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
