package httpx

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without internal err",
			err:  ErrParamMissing("names is required"),
			want: "code=2001, message=names is required",
		},
		{
			name: "with internal err",
			err:  ErrStorageError("", errors.New("disk full")),
			want: "code=5002, message=zoning storage error, err=disk full",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name    string
		err     *AppError
		status  int
		code    int
		message string
	}{
		{"unauthorized", ErrUnauthorized(""), http.StatusUnauthorized, CodeUnauthorized, "unauthorized"},
		{"invalid token", ErrInvalidToken(""), http.StatusUnauthorized, CodeInvalidToken, "invalid token"},
		{"token expired", ErrTokenExpired(""), http.StatusUnauthorized, CodeTokenExpired, "token expired"},
		{"bad login", ErrBadLogin(), http.StatusUnauthorized, CodeBadLogin, "invalid username or password"},
		{"param missing", ErrParamMissing("zone is required"), http.StatusBadRequest, CodeParamMissing, "zone is required"},
		{"param invalid", ErrParamInvalid(""), http.StatusBadRequest, CodeParamInvalid, "parameter format error"},
		{"param illegal", ErrParamIllegal(""), http.StatusBadRequest, CodeParamIllegal, "parameter value illegal"},
		{"not found", ErrNotFound(`not found: zone "z9"`), http.StatusNotFound, CodeNotFound, `not found: zone "z9"`},
		{"already exists", ErrAlreadyExists(""), http.StatusConflict, CodeAlreadyExists, "name already exists"},
		{"state conflict", ErrStateConflict(""), http.StatusConflict, CodeStateConflict, "current state does not allow operation"},
		{"internal", ErrInternalError("", cause), http.StatusInternalServerError, CodeInternalError, "internal error"},
		{"storage", ErrStorageError("", cause), http.StatusInternalServerError, CodeStorageError, "zoning storage error"},
		{"external", ErrExternalError("", cause), http.StatusBadGateway, CodeExternalError, "CDC device call failed"},
		{"busy", ErrBusy("", cause), http.StatusServiceUnavailable, CodeBusy, "zoning is busy, retry later"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.HTTPStatus != tt.status || tt.err.Code != tt.code || tt.err.Message != tt.message {
				t.Errorf("got %d/%d/%q, want %d/%d/%q", tt.err.HTTPStatus, tt.err.Code, tt.err.Message, tt.status, tt.code, tt.message)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	if !errors.Is(ErrExternalError("", cause), cause) {
		t.Error("errors.Is does not see the internal error")
	}
	if errors.Unwrap(ErrNotFound("")) != nil {
		t.Error("client error without cause should unwrap to nil")
	}
}

func TestAppError_WithData(t *testing.T) {
	err := ErrStateConflict("").WithData([]string{"3"})
	if ids, ok := err.Data.([]string); !ok || len(ids) != 1 {
		t.Errorf("Data = %#v", err.Data)
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		min  int
		max  int
	}{
		{"CodeSuccess", CodeSuccess, 0, 0},
		{"CodeUnauthorized", CodeUnauthorized, 1000, 1099},
		{"CodeInvalidToken", CodeInvalidToken, 1000, 1099},
		{"CodeTokenExpired", CodeTokenExpired, 1000, 1099},
		{"CodeBadLogin", CodeBadLogin, 1000, 1099},
		{"CodeParamMissing", CodeParamMissing, 2000, 2099},
		{"CodeParamInvalid", CodeParamInvalid, 2000, 2099},
		{"CodeParamIllegal", CodeParamIllegal, 2000, 2099},
		{"CodeNotFound", CodeNotFound, 3000, 3999},
		{"CodeAlreadyExists", CodeAlreadyExists, 3000, 3999},
		{"CodeStateConflict", CodeStateConflict, 3000, 3999},
		{"CodeInternalError", CodeInternalError, 5000, 5999},
		{"CodeStorageError", CodeStorageError, 5000, 5999},
		{"CodeExternalError", CodeExternalError, 5000, 5999},
		{"CodeBusy", CodeBusy, 5000, 5999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code < tt.min || tt.code > tt.max {
				t.Errorf("%s = %d, expected to be in range [%d, %d]", tt.name, tt.code, tt.min, tt.max)
			}
		})
	}
}
