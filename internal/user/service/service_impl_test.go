package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	auditrepository "github.com/ecomprotect/sentinel/internal/audit/repository"
	auditservice "github.com/ecomprotect/sentinel/internal/audit/service"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/ecomprotect/sentinel/internal/user/domain"
	"github.com/ecomprotect/sentinel/internal/user/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type userFixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	svc     domain.Service
	storeID snowflake.ID
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	audit := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: auditrepository.Provide(),
	})
	svc := New(Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:  repository.Provide(),
		Audit: audit,
	})

	return &userFixture{db: db, node: node, svc: svc, storeID: node.Generate()}
}

func (f *userFixture) ctx() context.Context {
	return storectx.WithStoreID(context.Background(), int64(f.storeID))
}

func validUser() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		FullName:     "Jo Bloggs",
		Email:        "Jo.Bloggs@Example.com",
		MobileNumber: "+44 7700 900123",
		Password:     "correct horse battery",
		Role:         domain.RoleCustomerAdmin,
	}
}

func TestCreateUser(t *testing.T) {
	f := newUserFixture(t)

	user, err := f.svc.Create(f.ctx(), validUser())
	require.NoError(t, err)

	assert.Equal(t, "jo.bloggs@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.EmailVerified)
	require.NotNil(t, user.StoreID)
	assert.Equal(t, f.storeID, *user.StoreID)

	// The password is stored hashed, never verbatim.
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery")))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Create(f.ctx(), validUser())
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx(), validUser())
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestCreateUserValidation(t *testing.T) {
	f := newUserFixture(t)

	req := validUser()
	req.FullName = ""
	_, err := f.svc.Create(f.ctx(), req)
	assert.ErrorIs(t, err, domain.ErrMissingFullName)

	req = validUser()
	req.Email = "not-an-email"
	_, err = f.svc.Create(f.ctx(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	req = validUser()
	req.MobileNumber = "  "
	_, err = f.svc.Create(f.ctx(), req)
	assert.ErrorIs(t, err, domain.ErrMissingMobile)

	req = validUser()
	req.Password = "short"
	_, err = f.svc.Create(f.ctx(), req)
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	req = validUser()
	req.Role = "superuser"
	_, err = f.svc.Create(f.ctx(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	// Tenant roles need a store, platform roles do not.
	req = validUser()
	_, err = f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidStore)

	req = validUser()
	req.Email = "ops@ecomprotect.example"
	req.Role = domain.RoleECPAdmin
	user, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, user.StoreID)
}

func TestUserMutations(t *testing.T) {
	f := newUserFixture(t)

	user, err := f.svc.Create(f.ctx(), validUser())
	require.NoError(t, err)
	id := user.ID.String()

	require.NoError(t, f.svc.VerifyEmail(f.ctx(), id))
	require.NoError(t, f.svc.SetMFAEnabled(f.ctx(), id, true))
	require.NoError(t, f.svc.RecordLogin(f.ctx(), id))
	require.NoError(t, f.svc.Deactivate(f.ctx(), id))

	current, err := f.svc.GetByID(f.ctx(), id)
	require.NoError(t, err)
	assert.True(t, current.EmailVerified)
	assert.True(t, current.MFAEnabled)
	assert.NotNil(t, current.LastLoginAt)
	assert.False(t, current.IsActive)

	err = f.svc.VerifyEmail(f.ctx(), f.storeID.String())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	err = f.svc.VerifyEmail(f.ctx(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
