package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "field and row",
			err:  &ValidationError{Field: "치과명", Row: 4, Message: "empty after normalization"},
			want: "validation failed for 치과명 at row 4: empty after normalization",
		},
		{
			name: "field only",
			err:  &ValidationError{Field: "homepage", Message: "bad scheme"},
			want: "validation failed for homepage: bad scheme",
		},
		{
			name: "message only",
			err:  &ValidationError{Message: "empty batch header"},
			want: "validation failed: empty batch header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}
		})
	}
}

func TestDuplicateNameError(t *testing.T) {
	err := NewDuplicateNameError("input", []string{"서울치과", "한빛치과"})

	if !errors.Is(err, ErrDuplicateName) {
		t.Error("DuplicateNameError should match ErrDuplicateName")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("DuplicateNameError should also match ErrInvalidInput")
	}
	if !strings.Contains(err.Error(), "서울치과") {
		t.Errorf("Error() should name the duplicates, got %q", err.Error())
	}
}

func TestSchemaError(t *testing.T) {
	err := NewSchemaError("clinics.xlsx", "Sheet1", []string{"주소", "전화"})

	if !errors.Is(err, ErrMissingColumn) {
		t.Error("SchemaError should match ErrMissingColumn")
	}
	want := "missing required column(s) in clinics.xlsx (sheet Sheet1): 주소, 전화"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIOErrorUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := NewIOError("write", "output/mapping.csv", inner)

	if !errors.Is(err, inner) {
		t.Error("IOError should unwrap to the inner error")
	}
	if !strings.Contains(err.Error(), "output/mapping.csv") {
		t.Errorf("Error() should include the path, got %q", err.Error())
	}
}

func TestWrapHelpersNilPassthrough(t *testing.T) {
	if WrapIO("read", "x", nil) != nil {
		t.Error("WrapIO(nil) should return nil")
	}
	if WrapParse("csv", "x", nil) != nil {
		t.Error("WrapParse(nil) should return nil")
	}
	if WrapValidation("name", nil) != nil {
		t.Error("WrapValidation(nil) should return nil")
	}
}

func TestHelperChecks(t *testing.T) {
	if !IsDuplicateName(NewDuplicateNameError("registry", []string{"a"})) {
		t.Error("IsDuplicateName failed")
	}
	if !IsMissingColumn(NewSchemaError("f", "", []string{"c"})) {
		t.Error("IsMissingColumn failed")
	}
	if IsValidationError(errors.New("plain")) {
		t.Error("plain error should not be a validation error")
	}
}
