package core

import (
	"errors"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "NET001",
			wantMessage: "Unable to reach the explorer API",
		},
		{
			name:        "connection reset maps correctly",
			err:         errors.New("read tcp: connection reset by peer"),
			wantCode:    "NET002",
			wantMessage: "Connection to the explorer API was interrupted",
		},
		{
			name:        "timeout maps correctly",
			err:         errors.New("net/http: request timeout while awaiting headers"),
			wantCode:    "NET003",
			wantMessage: "Request to the explorer API timed out",
		},
		{
			name:        "invalid csv maps correctly",
			err:         errors.New("invalid csv: record on line 3: wrong number of fields"),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
		{
			name:        "empty file maps correctly",
			err:         errors.New("empty file: no data rows after header"),
			wantCode:    "FILE005",
			wantMessage: "The uploaded file has no data rows",
		},
		{
			name:        "hash column maps correctly",
			err:         errors.New("hash column not found: Extrinsic Hash"),
			wantCode:    "COL001",
			wantMessage: "The selected hash column does not exist in the file",
		},
		{
			name:        "too many jobs maps correctly",
			err:         ErrTooManyJobs,
			wantCode:    "JOB002",
			wantMessage: "The system is busy processing other jobs",
		},
		{
			name:        "job not found maps correctly",
			err:         errors.New("job not found: abc-123"),
			wantCode:    "JOB003",
			wantMessage: "Fetch job not found",
		},
		{
			name:        "file not found maps correctly",
			err:         errors.New("file not found: abc-123"),
			wantCode:    "JOB004",
			wantMessage: "Uploaded file not found",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("CONNECTION REFUSED"),
			wantCode:    "NET001",
			wantMessage: "Unable to reach the explorer API",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("hash column not found: Block Hash")
	got := FormatUserError(err)
	want := "The selected hash column does not exist in the file (Code: COL001). Pick one of the columns shown in the preview"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}

	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should return empty string")
	}
}

func TestIsUserFacing(t *testing.T) {
	if !IsUserFacing(ErrTooManyJobs) {
		t.Error("ErrTooManyJobs should be user-facing")
	}
	if IsUserFacing(errors.New("nil pointer dereference")) {
		t.Error("internal errors should not be user-facing")
	}
	if IsUserFacing(nil) {
		t.Error("nil error should not be user-facing")
	}
}

func TestUserError(t *testing.T) {
	technical := errors.New("job not found: xyz")
	ue := NewUserError(technical)

	if ue.Error() != "Fetch job not found" {
		t.Errorf("Error() = %q, want user message", ue.Error())
	}
	if !errors.Is(ue, technical) {
		t.Error("UserError should unwrap to the technical error")
	}
	if ue.User.Code != "JOB003" {
		t.Errorf("code = %q, want JOB003", ue.User.Code)
	}

	if NewUserError(nil) != nil {
		t.Error("NewUserError(nil) should return nil")
	}
}
