package services

import (
	"context"
	"errors"
	"testing"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMessageRepository) ListReceived(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	args := m.Called(ctx, receiverID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}

func (m *MockMessageRepository) ListSent(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	args := m.Called(ctx, senderID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error) {
	args := m.Called(ctx, receiverID)
	return args.Int(0), args.Error(1)
}

// recordingNotifier captures notification calls without a real queue.
type recordingNotifier struct {
	notified []*models.Message
	err      error
}

func (n *recordingNotifier) NotifyNewMessage(ctx context.Context, message *models.Message) error {
	n.notified = append(n.notified, message)
	return n.err
}

type MessageServiceTestSuite struct {
	suite.Suite
	messageRepo *MockMessageRepository
	profileRepo *MockProfileRepository
	notifier    *recordingNotifier
	service     MessageService
	senderID    uuid.UUID
	receiverID  uuid.UUID
	context     context.Context
}

func (suite *MessageServiceTestSuite) SetupTest() {
	suite.messageRepo = new(MockMessageRepository)
	suite.profileRepo = new(MockProfileRepository)
	suite.notifier = &recordingNotifier{}
	suite.service = NewMessageService(suite.messageRepo, suite.profileRepo, suite.notifier)
	suite.senderID = uuid.New()
	suite.receiverID = uuid.New()
	suite.context = context.Background()
}

func TestMessageServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MessageServiceTestSuite))
}

func (suite *MessageServiceTestSuite) draft() *models.Message {
	return &models.Message{
		SenderID:   suite.senderID,
		ReceiverID: suite.receiverID,
		Subject:    "Leaky faucet",
		Message:    "The kitchen faucet drips overnight.",
	}
}

func (suite *MessageServiceTestSuite) TestSend_PersistsAndNotifies() {
	suite.profileRepo.On("GetByID", suite.context, suite.receiverID).
		Return(&models.Profile{ID: suite.receiverID, Role: models.RoleRenter}, nil)
	suite.messageRepo.On("Create", suite.context, mock.Anything).Return(nil)

	message := suite.draft()
	err := suite.service.Send(suite.context, message)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, message.ID)
	assert.False(suite.T(), message.IsRead)
	assert.Len(suite.T(), suite.notifier.notified, 1)
}

func (suite *MessageServiceTestSuite) TestSend_NotifierFailureDoesNotFailSend() {
	suite.notifier.err = errors.New("queue unavailable")
	suite.profileRepo.On("GetByID", suite.context, suite.receiverID).
		Return(&models.Profile{ID: suite.receiverID, Role: models.RoleRenter}, nil)
	suite.messageRepo.On("Create", suite.context, mock.Anything).Return(nil)

	err := suite.service.Send(suite.context, suite.draft())
	assert.NoError(suite.T(), err)
}

func (suite *MessageServiceTestSuite) TestSend_SelfSendRejected() {
	message := suite.draft()
	message.ReceiverID = suite.senderID

	err := suite.service.Send(suite.context, message)
	assert.Error(suite.T(), err)
	suite.messageRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *MessageServiceTestSuite) TestSend_UnknownReceiver() {
	suite.profileRepo.On("GetByID", suite.context, suite.receiverID).Return(nil, errors.New("no rows"))

	err := suite.service.Send(suite.context, suite.draft())
	assert.Error(suite.T(), err)
	assert.Empty(suite.T(), suite.notifier.notified)
}

func (suite *MessageServiceTestSuite) TestSend_EmptySubject() {
	message := suite.draft()
	message.Subject = ""

	err := suite.service.Send(suite.context, message)
	assert.Error(suite.T(), err)
	suite.profileRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *MessageServiceTestSuite) TestMarkRead_OnlyReceiver() {
	messageID := uuid.New()
	stored := suite.draft()
	stored.ID = messageID
	suite.messageRepo.On("GetByID", suite.context, messageID).Return(stored, nil)

	err := suite.service.MarkRead(suite.context, messageID, suite.senderID)
	assert.Error(suite.T(), err)
	suite.messageRepo.AssertNotCalled(suite.T(), "MarkRead", mock.Anything, mock.Anything)
}

func (suite *MessageServiceTestSuite) TestMarkRead_AlreadyReadIsNoOp() {
	messageID := uuid.New()
	stored := suite.draft()
	stored.ID = messageID
	stored.IsRead = true
	suite.messageRepo.On("GetByID", suite.context, messageID).Return(stored, nil)

	err := suite.service.MarkRead(suite.context, messageID, suite.receiverID)
	assert.NoError(suite.T(), err)
	suite.messageRepo.AssertNotCalled(suite.T(), "MarkRead", mock.Anything, mock.Anything)
}

func (suite *MessageServiceTestSuite) TestMarkRead_Success() {
	messageID := uuid.New()
	stored := suite.draft()
	stored.ID = messageID
	suite.messageRepo.On("GetByID", suite.context, messageID).Return(stored, nil)
	suite.messageRepo.On("MarkRead", suite.context, messageID).Return(nil)

	err := suite.service.MarkRead(suite.context, messageID, suite.receiverID)
	assert.NoError(suite.T(), err)
	suite.messageRepo.AssertExpectations(suite.T())
}
