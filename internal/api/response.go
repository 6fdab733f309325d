package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

const maxBodyBytes = 1 << 20

type errorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError responds with the coded error and the status mapped from its code.
func writeError(w http.ResponseWriter, err error) {
	detail := errorDetail{Code: int(errors.GetCode(err)), Message: err.Error()}

	var coded *errors.Error
	if errors.As(err, &coded) {
		detail.Message = coded.Message
		if coded.Cause != nil {
			detail.Message += ": " + coded.Cause.Error()
		}
	}

	writeJSON(w, errors.HTTPStatus(err), errorBody{Error: detail})
}

// decodeJSON reads a JSON body into v. An empty or malformed body is a 122 error.
func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))

	if err := decoder.Decode(v); err != nil {
		if err == io.EOF {
			return errors.New(errors.ErrCodeInvalidRequestBody, "request body is empty")
		}

		return errors.Wrap(errors.ErrCodeInvalidRequestBody, "invalid request body", err)
	}

	return nil
}

// queryInt parses an integer query parameter, returning fallback when it is absent.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "%s must be an integer", name)
	}

	return value, nil
}

// inRange checks that a query value lies within [min, max].
func inRange(name string, value, lo, hi int) error {
	if value < lo || value > hi {
		return errors.Newf(errors.ErrCodeInvalidParameter, "%s must be between %d and %d, got %d", name, lo, hi, value)
	}

	return nil
}
