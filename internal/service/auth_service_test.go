package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return nil, repository.ErrDuplicateEntry
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.Username] = &copied
	return user, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeAreaRepo) {
	userRepo := newFakeUserRepo()
	areaRepo := newFakeAreaRepo()
	return NewAuthService(userRepo, areaRepo, "test-secret", 24*time.Hour), userRepo, areaRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "alice", Password: "mật-khẩu-6"})
	require.NoError(t, err)
	assert.Equal(t, "user", user.Role)
	assert.Empty(t, user.Password)

	// Trùng username
	_, err = svc.Register(ctx, domain.RegisterUserDTO{Username: "alice", Password: "khác"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	resp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "alice", Password: "mật-khẩu-6"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.Username)

	_, claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user", claims["role"])
	assert.Equal(t, "alice", claims["username"])
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "bob", Password: "đúng-rồi"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginUserDTO{Username: "bob", Password: "sai-rồi"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginUserDTO{Username: "không-tồn-tại", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, _, err := svc.ValidateToken("không-phải-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestClaimMonitorToken(t *testing.T) {
	svc, _, areaRepo := newAuthFixture()
	ctx := context.Background()

	hashed, err := HashAreaPassword("mật-khẩu-khu-vực")
	require.NoError(t, err)
	area, err := areaRepo.Create(ctx, &domain.ParkingArea{Name: "Lot A", Password: hashed})
	require.NoError(t, err)

	token, err := svc.ClaimMonitorToken(ctx, domain.MonitorClaimDTO{
		ParkingAreaID: area.ID,
		Password:      "mật-khẩu-khu-vực",
		SystemID:      "cam-01",
	})
	require.NoError(t, err)

	_, claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "monitor", claims["role"])

	areaID, ok := MonitorAreaID(claims)
	require.True(t, ok)
	assert.Equal(t, area.ID, areaID)
}

func TestClaimMonitorTokenWrongPassword(t *testing.T) {
	svc, _, areaRepo := newAuthFixture()
	ctx := context.Background()

	hashed, err := HashAreaPassword("đúng")
	require.NoError(t, err)
	area, err := areaRepo.Create(ctx, &domain.ParkingArea{Name: "Lot A", Password: hashed})
	require.NoError(t, err)

	_, err = svc.ClaimMonitorToken(ctx, domain.MonitorClaimDTO{
		ParkingAreaID: area.ID,
		Password:      "sai",
		SystemID:      "cam-01",
	})
	assert.ErrorIs(t, err, ErrWrongAreaPassword)

	// Khu vực không có mật khẩu: không claim được.
	noPass, err := areaRepo.Create(ctx, &domain.ParkingArea{Name: "Lot B"})
	require.NoError(t, err)
	_, err = svc.ClaimMonitorToken(ctx, domain.MonitorClaimDTO{
		ParkingAreaID: noPass.ID,
		Password:      "gì-cũng-sai",
		SystemID:      "cam-01",
	})
	assert.ErrorIs(t, err, ErrWrongAreaPassword)
}

func TestMonitorAreaIDMissingClaim(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "carol", Password: "mật-khẩu"})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "carol", Password: "mật-khẩu"})
	require.NoError(t, err)

	_, claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)

	// Token người dùng thường không mang area_id.
	_, ok := MonitorAreaID(claims)
	assert.False(t, ok)
}
