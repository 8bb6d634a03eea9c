package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeAmbiguousExport, "two matches", http.StatusConflict)
	if err.Code != ErrCodeAmbiguousExport {
		t.Errorf("expected code %s, got %s", ErrCodeAmbiguousExport, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("AMBIGUOUS_EXPORT should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeExportNotFound, "missing", http.StatusNotFound)
	if !err.Retryable {
		t.Error("EXPORT_NOT_FOUND should be retryable")
	}
}

func TestAppError_Constructors_StatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"conversion", MetadataConversion("ViewExport", "Order", "bad int"), ErrCodeMetadataConversion, http.StatusUnprocessableEntity},
		{"duplicate", DuplicateContract("*app.Logger", "app.Sink"), ErrCodeDuplicateContract, http.StatusUnprocessableEntity},
		{"declaration", InvalidDeclaration("*app.Logger", "two policies"), ErrCodeInvalidDeclaration, http.StatusUnprocessableEntity},
		{"mismatch", ContractTypeMismatch("*app.Logger", "io.Reader"), ErrCodeContractTypeMismatch, http.StatusInternalServerError},
		{"constructor", InvalidConstructor("func()", "no result"), ErrCodeInvalidConstructor, http.StatusInternalServerError},
		{"sealed", ContainerSealed("dig", "k"), ErrCodeContainerSealed, http.StatusConflict},
		{"not found", ExportNotFound("app.Sink"), ErrCodeExportNotFound, http.StatusNotFound},
		{"ambiguous", AmbiguousExport("app.Sink", 2), ErrCodeAmbiguousExport, http.StatusConflict},
		{"key", MetadataKeyNotFound("Order"), ErrCodeMetadataKeyNotFound, http.StatusNotFound},
		{"cycle", CircularDependency([]string{"a", "b", "a"}), ErrCodeCircularDependency, http.StatusInternalServerError},
		{"boundary", BoundaryNotSupported("vessel"), ErrCodeBoundaryNotSupported, http.StatusNotImplemented},
		{"input", InvalidInput("backend", "unknown"), ErrCodeInvalidInput, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("expected %d, got %d", tt.status, tt.err.HTTPStatus)
			}
			if tt.err.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestAppError_Is_ComparesCodes(t *testing.T) {
	err := fmt.Errorf("resolve: %w", ExportNotFound("app.Sink"))
	if !stderrors.Is(err, ErrExportNotFound) {
		t.Error("expected wrapped error to match ErrExportNotFound")
	}
	if stderrors.Is(err, ErrAmbiguousExport) {
		t.Error("did not expect match with ErrAmbiguousExport")
	}
	if !HasCode(err, ErrCodeExportNotFound) {
		t.Error("expected HasCode to report EXPORT_NOT_FOUND")
	}
}

func TestAppError_Error_WithCause(t *testing.T) {
	cause := fmt.Errorf("strconv failure")
	err := MetadataConversion("ViewExport", "Order", "not an int").WithCause(cause)
	msg := err.Error()
	if !strings.Contains(msg, "METADATA_CONVERSION") || !strings.Contains(msg, "strconv failure") {
		t.Errorf("unexpected message %q", msg)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected Unwrap to expose cause")
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := Validation("bad").WithDetail("field", "backend")
	if err.Details["field"] != "backend" {
		t.Errorf("expected field detail, got %v", err.Details)
	}
}

func TestInvalidInput_EmptyField(t *testing.T) {
	err := InvalidInput("", "bad")
	if _, ok := err.Details["field"]; ok {
		t.Error("expected no field detail")
	}
}

func TestAppError_ToResponse(t *testing.T) {
	resp := AmbiguousExport("app.Sink", 3).ToResponse()
	if resp.Error.Code != ErrCodeAmbiguousExport {
		t.Errorf("expected AMBIGUOUS_EXPORT, got %s", resp.Error.Code)
	}
	if resp.Error.Details["count"] != 3 {
		t.Errorf("expected count 3, got %v", resp.Error.Details["count"])
	}
}

func TestRespond(t *testing.T) {
	status, body := Respond(fmt.Errorf("bind: %w", ExportNotFound("app.Sink")))
	if status != 404 || body.Error.Code != ErrCodeExportNotFound {
		t.Errorf("unexpected %d %+v", status, body)
	}

	status, body = Respond(fmt.Errorf("dig: missing type"))
	if status != 500 || body.Error.Code != ErrCodeInternal {
		t.Errorf("unexpected %d %+v", status, body)
	}
	if body.Error.Message == "dig: missing type" {
		t.Error("backend message must not leak")
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Internal(nil))
	appErr, ok := AsAppError(wrapped)
	if !ok || appErr.Code != ErrCodeInternal {
		t.Fatalf("expected INTERNAL_ERROR app error, got %v %v", appErr, ok)
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected plain error not to convert")
	}
}
