package handlers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, document *models.Document, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, document, reader, size, contentType)
	return args.Error(0)
}

func (m *MockDocumentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentService) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	args := m.Called(ctx, propertyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Document), args.Error(1)
}

type DocumentHandlersTestSuite struct {
	suite.Suite
	documentService *MockDocumentService
	propertyService *MockPropertyService
	handlers        *DocumentHandlers
	ownerID         uuid.UUID
	renterID        uuid.UUID
	property        *models.Property
	document        *models.Document
}

func (suite *DocumentHandlersTestSuite) SetupTest() {
	suite.documentService = new(MockDocumentService)
	suite.propertyService = new(MockPropertyService)
	suite.handlers = NewDocumentHandlers(suite.documentService, suite.propertyService)

	suite.ownerID = uuid.New()
	suite.renterID = uuid.New()
	suite.property = &models.Property{
		ID:       uuid.New(),
		OwnerID:  suite.ownerID,
		TenantID: &suite.renterID,
	}
	suite.document = &models.Document{
		ID:         uuid.New(),
		PropertyID: suite.property.ID,
		Name:       "lease.pdf",
		UploadedBy: suite.ownerID,
	}
}

func TestDocumentHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentHandlersTestSuite))
}

func (suite *DocumentHandlersTestSuite) TestList_StrangerForbidden() {
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)

	c, _ := newJSONContext(http.MethodGet, "/v1/properties/"+suite.property.ID.String()+"/documents", "")
	c.SetParamNames("id")
	c.SetParamValues(suite.property.ID.String())
	withIdentity(c, uuid.New(), models.RoleRenter)

	err := suite.handlers.List(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusForbidden, httpErr.Code)
	suite.documentService.AssertNotCalled(suite.T(), "ListByProperty", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentHandlersTestSuite) TestList_AssignedRenterAllowed() {
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)
	suite.documentService.On("ListByProperty", mock.Anything, suite.property.ID, 50, 0).
		Return([]*models.Document{suite.document}, nil)

	c, rec := newJSONContext(http.MethodGet, "/v1/properties/"+suite.property.ID.String()+"/documents", "")
	c.SetParamNames("id")
	c.SetParamValues(suite.property.ID.String())
	withIdentity(c, suite.renterID, models.RoleRenter)

	err := suite.handlers.List(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *DocumentHandlersTestSuite) TestDownloadURL_StrangerForbidden() {
	suite.documentService.On("GetByID", mock.Anything, suite.document.ID).Return(suite.document, nil)
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)

	c, _ := newJSONContext(http.MethodGet, "/v1/documents/"+suite.document.ID.String()+"/url", "")
	c.SetParamNames("id")
	c.SetParamValues(suite.document.ID.String())
	withIdentity(c, uuid.New(), models.RoleRenter)

	err := suite.handlers.DownloadURL(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusForbidden, httpErr.Code)
	suite.documentService.AssertNotCalled(suite.T(), "GetDownloadURL", mock.Anything, mock.Anything)
}

func (suite *DocumentHandlersTestSuite) TestDownloadURL_OwnerAllowed() {
	suite.documentService.On("GetByID", mock.Anything, suite.document.ID).Return(suite.document, nil)
	suite.propertyService.On("GetByID", mock.Anything, suite.property.ID).Return(suite.property, nil)
	suite.documentService.On("GetDownloadURL", mock.Anything, suite.document.ID).Return("https://minio.example/presigned", nil)

	c, rec := newJSONContext(http.MethodGet, "/v1/documents/"+suite.document.ID.String()+"/url", "")
	c.SetParamNames("id")
	c.SetParamValues(suite.document.ID.String())
	withIdentity(c, suite.ownerID, models.RoleOwner)

	err := suite.handlers.DownloadURL(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "presigned")
}

func (suite *DocumentHandlersTestSuite) TestDownloadURL_MissingDocument() {
	suite.documentService.On("GetByID", mock.Anything, suite.document.ID).Return(nil, pgx.ErrNoRows)

	c, rec := newJSONContext(http.MethodGet, "/v1/documents/"+suite.document.ID.String()+"/url", "")
	c.SetParamNames("id")
	c.SetParamValues(suite.document.ID.String())
	withIdentity(c, suite.ownerID, models.RoleOwner)

	err := suite.handlers.DownloadURL(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}
