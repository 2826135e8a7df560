package validation_test

import (
	"context"
	"testing"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
	"github.com/SscSPs/user_accounts_service/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestValidate_RegisterValid(t *testing.T) {
	v := validation.New()
	err := v.Validate(context.Background(), portssvc.RegisterInput{
		Username: "alice_01",
		Email:    "alice@example.com",
		Password: "Passw0rd!",
		FullName: "Alice Liddell",
	})
	assert.NoError(t, err)
}

func TestValidate_RegisterMissingFields(t *testing.T) {
	v := validation.New()
	err := v.Validate(context.Background(), portssvc.RegisterInput{})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	fields := fieldErrors(t, err)
	assert.Equal(t, "Username is required", fields["username"])
	assert.Equal(t, "Email is required", fields["email"])
	assert.Equal(t, "Password is required", fields["password"])
	assert.Equal(t, "Full name is required", fields["fullName"])
}

func TestValidate_RegisterShapeRules(t *testing.T) {
	v := validation.New()
	err := v.Validate(context.Background(), portssvc.RegisterInput{
		Username: "al ice",
		Email:    "not-an-email",
		Password: "password1!",
		FullName: "Alice 2",
	})

	fields := fieldErrors(t, err)
	assert.Equal(t, "Username can only contain letters, numbers, and underscores", fields["username"])
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Equal(t, "Password must contain at least one uppercase letter", fields["password"])
	assert.Equal(t, "Full name can only contain letters and spaces", fields["fullName"])
}

func TestValidate_UsernameLength(t *testing.T) {
	v := validation.New()
	err := v.Validate(context.Background(), portssvc.RegisterInput{
		Username: "al",
		Email:    "alice@example.com",
		Password: "Passw0rd!",
		FullName: "Alice",
	})
	assert.Equal(t, "Username must be between 3 and 20 characters", fieldErrors(t, err)["username"])
}

func TestValidate_Login(t *testing.T) {
	v := validation.New()
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, portssvc.LoginInput{Username: "alice", Password: "x"}))
	assert.NoError(t, v.Validate(ctx, portssvc.LoginInput{Email: "alice@example.com", Password: "x"}))

	fields := fieldErrors(t, v.Validate(ctx, portssvc.LoginInput{}))
	assert.Equal(t, "Username is required", fields["username"])
	assert.Equal(t, "Email is required", fields["email"])
	assert.Equal(t, "Password is required", fields["password"])
}

func TestValidate_ChangePassword(t *testing.T) {
	v := validation.New()
	err := v.Validate(context.Background(), portssvc.ChangePasswordInput{OldPassword: "Old0ne!x", NewPassword: "short"})
	assert.Equal(t, "New password must be at least 8 characters long", fieldErrors(t, err)["newPassword"])
}
