package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

type validationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, detailResponse{Detail: detail})
}

// writeValidation renders validator failures as a 422 with a detail list.
func writeValidation(w http.ResponseWriter, where string, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []validationDetail{{Loc: []string{where}, Msg: err.Error(), Type: "value_error"}},
		})
		return
	}
	items := make([]validationDetail, 0, len(verrs))
	for _, fe := range verrs {
		items = append(items, validationDetail{
			Loc:  []string{where, fe.Field()},
			Msg:  validationMsg(fe),
			Type: fe.Tag(),
		})
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": items})
}

func validationMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return "String should have at least " + fe.Param() + " characters"
	case "max":
		return "String should have at most " + fe.Param() + " characters"
	case "gte", "lte":
		return "Input should satisfy " + fe.Tag() + " " + fe.Param()
	}
	return "Invalid value"
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}
