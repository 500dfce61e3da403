package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
)

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// Error renders a coded error with its HTTP status. The code distinguishes
// "your write did not happen" failures from "saved, side effect failed"
// ones; callers pick the message accordingly.
func Error(w http.ResponseWriter, err error) {
	code := common.CodeOf(err)
	body := errorBody{Error: string(code), Message: "unexpected error"}
	var coded *common.Error
	if errors.As(err, &coded) {
		body.Message = coded.Message
		body.Fields = coded.Fields
	}
	JSON(w, statusFor(code), body)
}

func statusFor(code common.Code) int {
	switch code {
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeConflict:
		return http.StatusConflict
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	case common.CodeParse:
		return http.StatusUnprocessableEntity
	case common.CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
