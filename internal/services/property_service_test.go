package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"testing"
	"time"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Mock repositories and services shared by the service tests in this package

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	return args.Get(0).([]*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) AssignTenant(ctx context.Context, id uuid.UUID, tenantID *uuid.UUID) error {
	args := m.Called(ctx, id, tenantID)
	return args.Error(0)
}

func (m *MockPropertyRepository) AssignTenantTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, tenantID *uuid.UUID) error {
	args := m.Called(ctx, tx, id, tenantID)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) CreateTx(ctx context.Context, tx pgx.Tx, profile *models.Profile) error {
	args := m.Called(ctx, tx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProfileRepository) SearchByRole(ctx context.Context, role models.Role, username string, limit, offset int) ([]*models.Profile, error) {
	args := m.Called(ctx, role, username, limit, offset)
	return args.Get(0).([]*models.Profile), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeCache is an in-memory CacheService good enough for service tests
type fakeCache struct {
	profiles   map[uuid.UUID]*models.Profile
	properties map[uuid.UUID]*models.Property
	lists      map[string][]*models.Property
	strings    map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		profiles:   make(map[uuid.UUID]*models.Profile),
		properties: make(map[uuid.UUID]*models.Property),
		lists:      make(map[string][]*models.Property),
		strings:    make(map[string]string),
	}
}

func fakeListKey(scopeID uuid.UUID, limit, offset int) string {
	return fmt.Sprintf("rentfolio:properties:%s:%d:%d", scopeID, limit, offset)
}

func (f *fakeCache) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	return f.profiles[profileID], nil
}

func (f *fakeCache) SetProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error {
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeCache) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	delete(f.profiles, profileID)
	return nil
}

func (f *fakeCache) GetProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	return f.properties[propertyID], nil
}

func (f *fakeCache) SetProperty(ctx context.Context, property *models.Property, ttl time.Duration) error {
	f.properties[property.ID] = property
	return nil
}

func (f *fakeCache) DeleteProperty(ctx context.Context, propertyID uuid.UUID) error {
	delete(f.properties, propertyID)
	return nil
}

func (f *fakeCache) GetPropertyList(ctx context.Context, scopeID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	return f.lists[fakeListKey(scopeID, limit, offset)], nil
}

func (f *fakeCache) SetPropertyList(ctx context.Context, scopeID uuid.UUID, limit, offset int, properties []*models.Property, ttl time.Duration) error {
	f.lists[fakeListKey(scopeID, limit, offset)] = properties
	return nil
}

func (f *fakeCache) DeletePropertyList(ctx context.Context, scopeID uuid.UUID) error {
	return f.DeleteByPattern(ctx, fmt.Sprintf("rentfolio:properties:%s:*", scopeID))
}

func (f *fakeCache) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, nil
}

func (f *fakeCache) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.strings[key] = value
	return nil
}

func (f *fakeCache) GetString(ctx context.Context, key string) (string, error) {
	return f.strings[key], nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.strings, key)
	return nil
}

func (f *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range f.lists {
		if ok, _ := path.Match(pattern, key); ok {
			delete(f.lists, key)
		}
	}
	for key := range f.strings {
		if ok, _ := path.Match(pattern, key); ok {
			delete(f.strings, key)
		}
	}
	return nil
}

func (f *fakeCache) KeysByPattern(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	for key := range f.strings {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

type PropertyServiceTestSuite struct {
	suite.Suite
	propertyRepo *MockPropertyRepository
	profileRepo  *MockProfileRepository
	cache        *fakeCache
	service      PropertyService
	ownerID      uuid.UUID
	context      context.Context
}

func (suite *PropertyServiceTestSuite) SetupTest() {
	suite.propertyRepo = new(MockPropertyRepository)
	suite.profileRepo = new(MockProfileRepository)
	suite.cache = newFakeCache()
	suite.service = NewPropertyService(suite.propertyRepo, suite.profileRepo, suite.cache)
	suite.ownerID = uuid.New()
	suite.context = context.Background()
}

func TestPropertyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PropertyServiceTestSuite))
}

func validProperty() *models.Property {
	return &models.Property{
		Name:        "Maple House",
		Address:     "12 Maple St",
		City:        "Springfield",
		State:       "IL",
		ZipCode:     "62704",
		MonthlyRent: 1850,
	}
}

func (suite *PropertyServiceTestSuite) TestCreate_SetsIDAndOwner() {
	property := validProperty()

	suite.propertyRepo.On("Create", suite.context, property).Return(nil)

	err := suite.service.Create(suite.context, suite.ownerID, property)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, property.ID)
	assert.Equal(suite.T(), suite.ownerID, property.OwnerID)
	suite.propertyRepo.AssertExpectations(suite.T())
}

func (suite *PropertyServiceTestSuite) TestCreate_MissingRequiredField() {
	property := validProperty()
	property.Name = ""

	err := suite.service.Create(suite.context, suite.ownerID, property)
	assert.Error(suite.T(), err)
	suite.propertyRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *PropertyServiceTestSuite) TestCreate_ZeroRentRejected() {
	property := validProperty()
	property.MonthlyRent = 0

	err := suite.service.Create(suite.context, suite.ownerID, property)
	assert.Error(suite.T(), err)
	suite.propertyRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *PropertyServiceTestSuite) TestCreate_InvalidatesOwnerList() {
	suite.cache.lists[fakeListKey(suite.ownerID, 50, 0)] = []*models.Property{validProperty()}

	property := validProperty()
	suite.propertyRepo.On("Create", suite.context, property).Return(nil)

	err := suite.service.Create(suite.context, suite.ownerID, property)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), suite.cache.lists[fakeListKey(suite.ownerID, 50, 0)])
}

func (suite *PropertyServiceTestSuite) TestGetByID_CachesAfterMiss() {
	property := validProperty()
	property.ID = uuid.New()
	property.OwnerID = suite.ownerID

	suite.propertyRepo.On("GetByID", suite.context, property.ID).Return(property, nil).Once()

	got, err := suite.service.GetByID(suite.context, property.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), property.ID, got.ID)

	// Second read must come from the cache
	got, err = suite.service.GetByID(suite.context, property.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), property.ID, got.ID)
	suite.propertyRepo.AssertNumberOfCalls(suite.T(), "GetByID", 1)
}

func (suite *PropertyServiceTestSuite) TestDelete_DropsCacheKeys() {
	tenantID := uuid.New()
	property := validProperty()
	property.ID = uuid.New()
	property.OwnerID = suite.ownerID
	property.TenantID = &tenantID

	suite.cache.properties[property.ID] = property
	suite.cache.lists[fakeListKey(suite.ownerID, 50, 0)] = []*models.Property{property}
	suite.cache.lists[fakeListKey(tenantID, 50, 0)] = []*models.Property{property}

	suite.propertyRepo.On("GetByID", suite.context, property.ID).Return(property, nil)
	suite.propertyRepo.On("Delete", suite.context, property.ID).Return(nil)

	err := suite.service.Delete(suite.context, property.ID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), suite.cache.properties[property.ID])
	assert.Nil(suite.T(), suite.cache.lists[fakeListKey(suite.ownerID, 50, 0)])
	assert.Nil(suite.T(), suite.cache.lists[fakeListKey(tenantID, 50, 0)])
}

func (suite *PropertyServiceTestSuite) TestDelete_MissingPropertySurfacesError() {
	id := uuid.New()
	suite.propertyRepo.On("GetByID", suite.context, id).Return(nil, pgx.ErrNoRows)

	err := suite.service.Delete(suite.context, id)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	suite.propertyRepo.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}

func (suite *PropertyServiceTestSuite) TestListForProfile_BranchesByRole() {
	renterID := uuid.New()
	rented := []*models.Property{validProperty()}
	owned := []*models.Property{validProperty(), validProperty()}

	suite.propertyRepo.On("ListByTenant", suite.context, renterID, 50, 0).Return(rented, nil)
	suite.propertyRepo.On("ListByOwner", suite.context, suite.ownerID, 50, 0).Return(owned, nil)

	got, err := suite.service.ListForProfile(suite.context, renterID, models.RoleRenter, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 1)

	got, err = suite.service.ListForProfile(suite.context, suite.ownerID, models.RoleOwner, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 2)
}

func (suite *PropertyServiceTestSuite) TestListForProfile_CacheIsPerPage() {
	firstPage := []*models.Property{validProperty()}
	widePage := []*models.Property{validProperty(), validProperty(), validProperty()}

	suite.propertyRepo.On("ListByOwner", suite.context, suite.ownerID, 1, 0).Return(firstPage, nil).Once()
	suite.propertyRepo.On("ListByOwner", suite.context, suite.ownerID, 50, 0).Return(widePage, nil).Once()

	got, err := suite.service.ListForProfile(suite.context, suite.ownerID, models.RoleOwner, 1, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 1)

	// A different page size must not be served from the limit=1 entry
	got, err = suite.service.ListForProfile(suite.context, suite.ownerID, models.RoleOwner, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 3)
	suite.propertyRepo.AssertExpectations(suite.T())
}

func (suite *PropertyServiceTestSuite) TestListForProfile_RepeatedPageComesFromCache() {
	page := []*models.Property{validProperty()}

	suite.propertyRepo.On("ListByOwner", suite.context, suite.ownerID, 20, 0).Return(page, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := suite.service.ListForProfile(suite.context, suite.ownerID, models.RoleOwner, 20, 0)
		assert.NoError(suite.T(), err)
		assert.Len(suite.T(), got, 1)
	}
	suite.propertyRepo.AssertNumberOfCalls(suite.T(), "ListByOwner", 1)
}

func (suite *PropertyServiceTestSuite) TestAssignTenant_RejectsNonRenter() {
	property := validProperty()
	property.ID = uuid.New()
	property.OwnerID = suite.ownerID

	ownerProfile := &models.Profile{ID: uuid.New(), Role: models.RoleOwner}

	suite.propertyRepo.On("GetByID", suite.context, property.ID).Return(property, nil)
	suite.profileRepo.On("GetByID", suite.context, ownerProfile.ID).Return(ownerProfile, nil)

	err := suite.service.AssignTenant(suite.context, property.ID, &ownerProfile.ID)
	assert.Error(suite.T(), err)
	suite.propertyRepo.AssertNotCalled(suite.T(), "AssignTenant", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PropertyServiceTestSuite) TestAssignTenant_Success() {
	property := validProperty()
	property.ID = uuid.New()
	property.OwnerID = suite.ownerID

	renter := &models.Profile{ID: uuid.New(), Role: models.RoleRenter}

	suite.propertyRepo.On("GetByID", suite.context, property.ID).Return(property, nil)
	suite.profileRepo.On("GetByID", suite.context, renter.ID).Return(renter, nil)
	suite.propertyRepo.On("AssignTenant", suite.context, property.ID, &renter.ID).Return(nil)

	err := suite.service.AssignTenant(suite.context, property.ID, &renter.ID)
	assert.NoError(suite.T(), err)
	suite.propertyRepo.AssertExpectations(suite.T())
}

func (suite *PropertyServiceTestSuite) TestAssignTenant_MissingProfile() {
	property := validProperty()
	property.ID = uuid.New()
	missingID := uuid.New()

	suite.propertyRepo.On("GetByID", suite.context, property.ID).Return(property, nil)
	suite.profileRepo.On("GetByID", suite.context, missingID).Return(nil, errors.New("no rows"))

	err := suite.service.AssignTenant(suite.context, property.ID, &missingID)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "not found")
}
