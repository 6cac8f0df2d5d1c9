package user

import (
	"testing"

	"github.com/trezcool/darasa/core"
)

func Test_validatePassword(t *testing.T) {
	fieldErr := func(text string) error {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: text})
	}

	tests := []struct {
		name      string
		pwd       string
		userAttrs []string
		wantErr   error
	}{
		{name: "too short", pwd: "L1r!", wantErr: fieldErr(pwdMinLenText)},
		{name: "whitespace", pwd: "Lir Lir1!", wantErr: fieldErr(pwdNoSpaceText)},
		{name: "all numeric", pwd: "12345678", wantErr: fieldErr(pwdNotAllNumText)},
		{name: "no uppercase", pwd: "lirlir1!23", wantErr: fieldErr(pwdComplexityText)},
		{name: "no digit", pwd: "LirLirLir!", wantErr: fieldErr(pwdComplexityText)},
		{name: "no special", pwd: "LirLir123", wantErr: fieldErr(pwdComplexityText)},
		{
			name:      "similar to user attributes",
			pwd:       "Jane.Doe@42x",
			userAttrs: []string{"Jane Doe", "jane.doe42@test.test"},
			wantErr:   fieldErr(pwdAttrSimText),
		},
		{name: "ok", pwd: "G0od&Pr0per"},
		{name: "ok with distant attributes", pwd: "G0od&Pr0per", userAttrs: []string{"Jane Doe", "jane.doe@test.test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword(tt.pwd, tt.userAttrs...)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validatePassword() error = %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr.Error() {
				t.Errorf("validatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
