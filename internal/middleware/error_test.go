package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

var errorCodes = []int{
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusNotFound,
	http.StatusConflict,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusServiceUnavailable,
}

func TestProperty_ErrorsHaveConsistentStructure(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all error responses carry detail, code and timestamp", prop.ForAll(
		func(detail string, pick int) bool {
			statusCode := errorCodes[pick%len(errorCodes)]

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, detail)

			if w.Code != statusCode || w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			if response.Detail != detail || response.Code != http.StatusText(statusCode) {
				return false
			}
			if response.Errors != nil {
				return false
			}

			_, err := time.Parse(time.RFC3339, response.Timestamp)
			return err == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidationErrorsHaveConsistentStructure(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors are listed under errors", prop.ForAll(
		func(fieldName string, errorMessage string) bool {
			w := httptest.NewRecorder()
			RespondWithValidationErrors(w, []ValidationError{{Field: fieldName, Message: errorMessage}})

			if w.Code != http.StatusBadRequest {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			return response.Detail == "validation failed" &&
				len(response.Errors) == 1 &&
				response.Errors[0].Field == fieldName &&
				response.Errors[0].Message == errorMessage
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithTransaction(t *testing.T) {
	c := qt.New(t)

	w := httptest.NewRecorder()
	RespondWithTransaction(w, http.StatusCreated, "Successful")

	c.Assert(w.Code, qt.Equals, http.StatusCreated)
	c.Assert(w.Body.String(), qt.JSONEquals, map[string]interface{}{
		"status_code": 201,
		"transaction": "Successful",
	})
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	c := qt.New(t)

	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/products/", nil))

	c.Assert(w.Code, qt.Equals, http.StatusInternalServerError)

	var response ErrorResponse
	c.Assert(json.Unmarshal(w.Body.Bytes(), &response), qt.IsNil)
	c.Assert(response.Detail, qt.Equals, "internal server error")
}

func TestProperty_JSONResponsesAreValid(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("JSON responses are valid and parseable", prop.ForAll(
		func(data map[string]string) bool {
			w := httptest.NewRecorder()
			RespondWithJSON(w, http.StatusOK, data)

			if w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var result map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
				return false
			}

			for k, v := range data {
				if result[k] != v {
					return false
				}
			}
			return true
		},
		gen.MapOf(gen.AlphaString(), gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
