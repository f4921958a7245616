package handlers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockMaintenanceService struct {
	mock.Mock
}

func (m *MockMaintenanceService) Create(ctx context.Context, request *models.MaintenanceRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockMaintenanceService) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRequest), args.Error(1)
}

func (m *MockMaintenanceService) Update(ctx context.Context, request *models.MaintenanceRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockMaintenanceService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMaintenanceService) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	args := m.Called(ctx, propertyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MaintenanceRequest), args.Error(1)
}

func (m *MockMaintenanceService) ListByRequester(ctx context.Context, requestedBy uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	args := m.Called(ctx, requestedBy, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MaintenanceRequest), args.Error(1)
}

func (m *MockMaintenanceService) AttachImage(ctx context.Context, image *models.MaintenanceImage, fileName string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, image, fileName, reader, size, contentType)
	return args.Error(0)
}

func (m *MockMaintenanceService) ListImages(ctx context.Context, maintenanceID uuid.UUID) ([]*models.MaintenanceImage, error) {
	args := m.Called(ctx, maintenanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MaintenanceImage), args.Error(1)
}

type MaintenanceHandlersTestSuite struct {
	suite.Suite
	maintenanceService *MockMaintenanceService
	propertyService    *MockPropertyService
	handlers           *MaintenanceHandlers
	ownerID            uuid.UUID
	renterID           uuid.UUID
	property           *models.Property
	request            *models.MaintenanceRequest
}

func (suite *MaintenanceHandlersTestSuite) SetupTest() {
	suite.maintenanceService = new(MockMaintenanceService)
	suite.propertyService = new(MockPropertyService)
	suite.handlers = NewMaintenanceHandlers(suite.maintenanceService, suite.propertyService)

	suite.ownerID = uuid.New()
	suite.renterID = uuid.New()
	suite.property = &models.Property{
		ID:       uuid.New(),
		OwnerID:  suite.ownerID,
		TenantID: &suite.renterID,
	}
	suite.request = &models.MaintenanceRequest{
		ID:          uuid.New(),
		PropertyID:  suite.property.ID,
		RequestedBy: suite.renterID,
		Title:       "Leaking tap",
		Priority:    "medium",
	}
}

func TestMaintenanceHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceHandlersTestSuite))
}

func (suite *MaintenanceHandlersTestSuite) TestGet_StrangerForbidden() {
	suite.maintenanceService.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil)
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)

	c, _ := newJSONContext(http.MethodGet, "/v1/maintenance/"+suite.request.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(suite.request.ID.String())
	withIdentity(c, uuid.New(), models.RoleRenter)

	err := suite.handlers.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusForbidden, httpErr.Code)
}

func (suite *MaintenanceHandlersTestSuite) TestGet_RequesterAllowed() {
	suite.maintenanceService.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil)

	c, rec := newJSONContext(http.MethodGet, "/v1/maintenance/"+suite.request.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(suite.request.ID.String())
	withIdentity(c, suite.renterID, models.RoleRenter)

	err := suite.handlers.Get(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	// The requester path never needs the property lookup
	suite.propertyService.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *MaintenanceHandlersTestSuite) TestUpdate_RenterForbidden() {
	suite.maintenanceService.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil)
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)

	c, _ := newJSONContext(http.MethodPut, "/v1/maintenance/"+suite.request.ID.String(), `{"status":"completed"}`)
	c.SetParamNames("id")
	c.SetParamValues(suite.request.ID.String())
	withIdentity(c, suite.renterID, models.RoleRenter)

	err := suite.handlers.Update(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusForbidden, httpErr.Code)
	suite.maintenanceService.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *MaintenanceHandlersTestSuite) TestDelete_StrangerForbidden() {
	suite.maintenanceService.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil)
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)

	c, _ := newJSONContext(http.MethodDelete, "/v1/maintenance/"+suite.request.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(suite.request.ID.String())
	withIdentity(c, uuid.New(), models.RoleOwner)

	err := suite.handlers.Delete(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusForbidden, httpErr.Code)
	suite.maintenanceService.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}

func (suite *MaintenanceHandlersTestSuite) TestDelete_OwnerAllowed() {
	suite.maintenanceService.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil)
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)
	suite.maintenanceService.On("Delete", mock.Anything, suite.request.ID).Return(nil)

	c, rec := newJSONContext(http.MethodDelete, "/v1/maintenance/"+suite.request.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(suite.request.ID.String())
	withIdentity(c, suite.ownerID, models.RoleOwner)

	err := suite.handlers.Delete(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNoContent, rec.Code)
	suite.maintenanceService.AssertExpectations(suite.T())
}

func (suite *MaintenanceHandlersTestSuite) TestListByProperty_StrangerForbidden() {
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)

	c, _ := newJSONContext(http.MethodGet, "/v1/properties/"+suite.property.ID.String()+"/maintenance", "")
	c.SetParamNames("id")
	c.SetParamValues(suite.property.ID.String())
	withIdentity(c, uuid.New(), models.RoleRenter)

	err := suite.handlers.ListByProperty(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusForbidden, httpErr.Code)
	suite.maintenanceService.AssertNotCalled(suite.T(), "ListByProperty", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MaintenanceHandlersTestSuite) TestListByProperty_AssignedRenterAllowed() {
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)
	suite.maintenanceService.On("ListByProperty", mock.Anything, suite.property.ID, 50, 0).
		Return([]*models.MaintenanceRequest{suite.request}, nil)

	c, rec := newJSONContext(http.MethodGet, "/v1/properties/"+suite.property.ID.String()+"/maintenance", "")
	c.SetParamNames("id")
	c.SetParamValues(suite.property.ID.String())
	withIdentity(c, suite.renterID, models.RoleRenter)

	err := suite.handlers.ListByProperty(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *MaintenanceHandlersTestSuite) TestListImages_StrangerForbidden() {
	suite.maintenanceService.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil)
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)

	c, _ := newJSONContext(http.MethodGet, "/v1/maintenance/"+suite.request.ID.String()+"/images", "")
	c.SetParamNames("id")
	c.SetParamValues(suite.request.ID.String())
	withIdentity(c, uuid.New(), models.RoleRenter)

	err := suite.handlers.ListImages(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusForbidden, httpErr.Code)
	suite.maintenanceService.AssertNotCalled(suite.T(), "ListImages", mock.Anything, mock.Anything)
}

func (suite *MaintenanceHandlersTestSuite) TestCreate_StrangerForbidden() {
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)

	body := `{"property_id":"` + suite.property.ID.String() + `","title":"Broken lock"}`
	c, _ := newJSONContext(http.MethodPost, "/v1/maintenance", body)
	withIdentity(c, uuid.New(), models.RoleRenter)

	err := suite.handlers.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusForbidden, httpErr.Code)
	suite.maintenanceService.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}
