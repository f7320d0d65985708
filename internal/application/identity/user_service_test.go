package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/indentflow/backend/internal/domain/identity"
	"github.com/indentflow/backend/internal/domain/shared"
)

func TestUserService_Create_RecordsCreator(t *testing.T) {
	userRepo := new(MockUserRepository)
	roleRepo := new(MockRoleRepository)
	service := NewUserService(userRepo, roleRepo, zap.NewNop())

	tenantID := uuid.New()
	creatorID := uuid.New()

	userRepo.On("ExistsByUsername", mock.Anything, "newuser").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *identity.User) bool {
		return u.CreatedBy != nil && *u.CreatedBy == creatorID
	})).Return(nil)

	dto, err := service.Create(context.Background(), CreateUserInput{
		TenantID:  tenantID,
		Username:  "newuser",
		Password:  "Password123",
		CreatedBy: &creatorID,
	})

	require.NoError(t, err)
	assert.Equal(t, "newuser", dto.Username)
	userRepo.AssertExpectations(t)
}

func TestUserService_Create_DuplicateUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	roleRepo := new(MockRoleRepository)
	service := NewUserService(userRepo, roleRepo, zap.NewNop())

	userRepo.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil)

	_, err := service.Create(context.Background(), CreateUserInput{
		TenantID: uuid.New(),
		Username: "taken",
		Password: "Password123",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "USERNAME_EXISTS", domainErr.Code)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
