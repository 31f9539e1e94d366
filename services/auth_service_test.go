package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kinekixcc/kheladi-sub001/models"
	"github.com/kinekixcc/kheladi-sub001/repositories"
	"github.com/kinekixcc/kheladi-sub001/utils"
)

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewAuthService(new(mockUserRepository))

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Asha Rai",
		Email:    "asha@example.com",
		Password: "short",
	})

	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterRejectsMalformedEmail(t *testing.T) {
	svc := NewAuthService(new(mockUserRepository))

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Asha Rai",
		Email:    "not-an-email",
		Password: "longenough",
	})

	require.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegisterNormalizesAndStoresHash(t *testing.T) {
	userRepo := new(mockUserRepository)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(user *models.User) bool {
		return user.Email == "asha@example.com" &&
			user.Role == models.RolePlayer &&
			user.PasswordHash != "" &&
			user.PasswordHash != "longenough"
	})).Return(nil)

	svc := NewAuthService(userRepo)

	user, err := svc.Register(context.Background(), RegisterInput{
		FullName: " Asha Rai ",
		Email:    "ASHA@Example.com",
		Password: "longenough",
	})

	require.NoError(t, err)
	require.Equal(t, "Asha Rai", user.FullName)
	require.Equal(t, "asha@example.com", user.Email)
	userRepo.AssertExpectations(t)
}

func TestRegisterMapsEmailConflict(t *testing.T) {
	userRepo := new(mockUserRepository)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrUserEmailConflict)

	svc := NewAuthService(userRepo)

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Asha Rai",
		Email:    "asha@example.com",
		Password: "longenough",
	})

	require.ErrorIs(t, err, ErrUserEmailConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := utils.HashPassword("the-real-password")
	require.NoError(t, err)

	userRepo := new(mockUserRepository)
	userRepo.On("GetByEmail", mock.Anything, "asha@example.com").
		Return(&models.User{ID: 7, Email: "asha@example.com", PasswordHash: hash}, nil)

	svc := NewAuthService(userRepo)

	_, err = svc.Login(context.Background(), models.Credentials{
		Email:    "asha@example.com",
		Password: "a-wrong-password",
	})

	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmailHidesExistence(t *testing.T) {
	userRepo := new(mockUserRepository)
	userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repositories.ErrUserNotFound)

	svc := NewAuthService(userRepo)

	_, err := svc.Login(context.Background(), models.Credentials{
		Email:    "ghost@example.com",
		Password: "whatever123",
	})

	require.ErrorIs(t, err, ErrInvalidCredentials)
}
