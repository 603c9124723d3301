package usecase_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"agent-hub/domain/dto"
	"agent-hub/domain/model"
	"agent-hub/domain/repository"
)

// Mock implementations

type MockAgentRepo struct {
	mock.Mock
}

func (m *MockAgentRepo) Create(ctx context.Context, agent *model.Agent) (*model.Agent, error) {
	args := m.Called(ctx, agent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

func (m *MockAgentRepo) GetByID(ctx context.Context, storeName string, id int64) (*model.Agent, error) {
	args := m.Called(ctx, storeName, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

func (m *MockAgentRepo) GetByIDAny(ctx context.Context, id int64) (*model.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

func (m *MockAgentRepo) ListByStore(ctx context.Context, storeName string) ([]model.Agent, error) {
	args := m.Called(ctx, storeName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Agent), args.Error(1)
}

func (m *MockAgentRepo) Update(ctx context.Context, agent *model.Agent) error {
	return m.Called(ctx, agent).Error(0)
}

func (m *MockAgentRepo) Delete(ctx context.Context, storeName string, id int64) error {
	return m.Called(ctx, storeName, id).Error(0)
}

func (m *MockAgentRepo) ToggleActive(ctx context.Context, storeName string, id int64) (bool, error) {
	args := m.Called(ctx, storeName, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAgentRepo) MarkRunning(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAgentRepo) MarkCompleted(ctx context.Context, id int64, prospectsFound int) error {
	return m.Called(ctx, id, prospectsFound).Error(0)
}

func (m *MockAgentRepo) MarkError(ctx context.Context, id int64, message string) error {
	return m.Called(ctx, id, message).Error(0)
}

func (m *MockAgentRepo) MarkStopped(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAgentRepo) SetProspectCount(ctx context.Context, id int64, count int) error {
	return m.Called(ctx, id, count).Error(0)
}

func (m *MockAgentRepo) IncrementProspectCount(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) ForwardWhatsApp(ctx context.Context, payload *dto.WhatsAppForward) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *MockEngine) ForwardInstagram(ctx context.Context, payload *dto.InstagramForward) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *MockEngine) ForwardEmail(ctx context.Context, payload *dto.EmailForward) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *MockEngine) TriggerAgentRun(ctx context.Context, payload *dto.AgentRunPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *MockEngine) TriggerVideoGeneration(ctx context.Context, payload *dto.VideoGeneratePayload) error {
	return m.Called(ctx, payload).Error(0)
}

type MockLeadRepo struct {
	mock.Mock
}

func (m *MockLeadRepo) Upsert(ctx context.Context, lead *model.Lead) (*model.Lead, bool, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Lead), args.Bool(1), args.Error(2)
}

func (m *MockLeadRepo) UpsertBatch(ctx context.Context, storeName string, agentID int64, items []dto.LeadBatchItem) (int, error) {
	args := m.Called(ctx, storeName, agentID, items)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepo) GetByID(ctx context.Context, storeName string, id int64) (*model.Lead, error) {
	args := m.Called(ctx, storeName, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockLeadRepo) Pending(ctx context.Context, filter repository.LeadFilter) ([]model.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

func (m *MockLeadRepo) SetStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockLeadRepo) Stats(ctx context.Context, storeName string) (*model.LeadStats, error) {
	args := m.Called(ctx, storeName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LeadStats), args.Error(1)
}

func (m *MockLeadRepo) CountByAgent(ctx context.Context, agentID int64) (int, error) {
	args := m.Called(ctx, agentID)
	return args.Int(0), args.Error(1)
}

type MockLeadConfigRepo struct {
	mock.Mock
}

func (m *MockLeadConfigRepo) GetByStoreName(ctx context.Context, storeName string) (*model.LeadConfig, error) {
	args := m.Called(ctx, storeName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LeadConfig), args.Error(1)
}

func (m *MockLeadConfigRepo) GetActive(ctx context.Context) ([]model.LeadConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeadConfig), args.Error(1)
}

func (m *MockLeadConfigRepo) Upsert(ctx context.Context, config *model.LeadConfig) (*model.LeadConfig, error) {
	args := m.Called(ctx, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LeadConfig), args.Error(1)
}

type MockInstagramConfigRepo struct {
	mock.Mock
}

func (m *MockInstagramConfigRepo) GetByStoreName(ctx context.Context, storeName string) (*model.InstagramConfig, error) {
	args := m.Called(ctx, storeName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InstagramConfig), args.Error(1)
}

func (m *MockInstagramConfigRepo) GetByUnipileAccountID(ctx context.Context, accountID string) (*model.InstagramConfig, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InstagramConfig), args.Error(1)
}

func (m *MockInstagramConfigRepo) Upsert(ctx context.Context, config *model.InstagramConfig) (*model.InstagramConfig, error) {
	args := m.Called(ctx, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InstagramConfig), args.Error(1)
}

func (m *MockInstagramConfigRepo) Update(ctx context.Context, config *model.InstagramConfig) error {
	return m.Called(ctx, config).Error(0)
}

type MockForwardQueueRepo struct {
	mock.Mock
}

func (m *MockForwardQueueRepo) Enqueue(ctx context.Context, job *model.ForwardJob) (*model.ForwardJob, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ForwardJob), args.Error(1)
}

func (m *MockForwardQueueRepo) ClaimDue(ctx context.Context, limit int) ([]model.ForwardJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ForwardJob), args.Error(1)
}

func (m *MockForwardQueueRepo) MarkDone(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockForwardQueueRepo) MarkFailed(ctx context.Context, id int64, attempt int, message string) error {
	return m.Called(ctx, id, attempt, message).Error(0)
}

func (m *MockForwardQueueRepo) MarkSkipped(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) Create(ctx context.Context, turn *model.ConversationTurn) (*model.ConversationTurn, error) {
	args := m.Called(ctx, turn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConversationTurn), args.Error(1)
}

func (m *MockConversationRepo) GetByID(ctx context.Context, id int64) (*model.ConversationTurn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConversationTurn), args.Error(1)
}

func (m *MockConversationRepo) Update(ctx context.Context, turn *model.ConversationTurn) error {
	return m.Called(ctx, turn).Error(0)
}

func (m *MockConversationRepo) History(ctx context.Context, conversationID string, limit int) ([]model.ConversationTurn, error) {
	args := m.Called(ctx, conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ConversationTurn), args.Error(1)
}

func (m *MockConversationRepo) RecentHistory(ctx context.Context, conversationID string, limit int) ([]model.ConversationTurn, error) {
	args := m.Called(ctx, conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ConversationTurn), args.Error(1)
}

func (m *MockConversationRepo) IsMessageProcessed(ctx context.Context, messageID string) (bool, error) {
	args := m.Called(ctx, messageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockConversationRepo) TotalMessages(ctx context.Context, storeName string) (int, error) {
	args := m.Called(ctx, storeName)
	return args.Int(0), args.Error(1)
}

func (m *MockConversationRepo) TotalSpend(ctx context.Context, storeName string) (float64, error) {
	args := m.Called(ctx, storeName)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockConversationRepo) ActivityByDay(ctx context.Context, storeName string, since time.Time) ([]model.ActivityPoint, error) {
	args := m.Called(ctx, storeName, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ActivityPoint), args.Error(1)
}

func (m *MockConversationRepo) ConversationSummaries(ctx context.Context, storeName string, limit int) ([]model.ConversationSummary, error) {
	args := m.Called(ctx, storeName, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ConversationSummary), args.Error(1)
}

func (m *MockConversationRepo) ChannelStats(ctx context.Context, storeName, channel string) (*model.ChannelStats, error) {
	args := m.Called(ctx, storeName, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChannelStats), args.Error(1)
}

type MockDedup struct {
	mock.Mock
}

func (m *MockDedup) MarkIfNew(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

type MockUnipile struct {
	mock.Mock
}

func (m *MockUnipile) CreateHostedAuthLink(ctx context.Context, storeName string) (string, string, error) {
	args := m.Called(ctx, storeName)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockUnipile) DeleteAccount(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

type MockVideoJobRepo struct {
	mock.Mock
}

func (m *MockVideoJobRepo) Create(ctx context.Context, job *model.VideoJob) (*model.VideoJob, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoJob), args.Error(1)
}

func (m *MockVideoJobRepo) GetByJobID(ctx context.Context, jobID string) (*model.VideoJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoJob), args.Error(1)
}

func (m *MockVideoJobRepo) Update(ctx context.Context, job *model.VideoJob) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockVideoJobRepo) Delete(ctx context.Context, jobID string) error {
	return m.Called(ctx, jobID).Error(0)
}

func (m *MockVideoJobRepo) History(ctx context.Context, storeID string, limit int) ([]model.VideoJob, error) {
	args := m.Called(ctx, storeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoJob), args.Error(1)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(path string, data []byte) error {
	return m.Called(path, data).Error(0)
}

func (m *MockBlobStore) Exists(path string) bool {
	return m.Called(path).Bool(0)
}

func (m *MockBlobStore) Open(path string) (io.ReadSeekCloser, int64, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(io.ReadSeekCloser), args.Get(1).(int64), args.Error(2)
}

func (m *MockBlobStore) Delete(path string) error {
	return m.Called(path).Error(0)
}

type MockWhatsAppConfigRepo struct {
	mock.Mock
}

func (m *MockWhatsAppConfigRepo) GetByStoreName(ctx context.Context, storeName string) (*model.WhatsAppStoreConfig, error) {
	args := m.Called(ctx, storeName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WhatsAppStoreConfig), args.Error(1)
}

func (m *MockWhatsAppConfigRepo) GetByTwilioNumber(ctx context.Context, phoneNumber string) (*model.WhatsAppStoreConfig, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WhatsAppStoreConfig), args.Error(1)
}

func (m *MockWhatsAppConfigRepo) Upsert(ctx context.Context, config *model.WhatsAppStoreConfig) (*model.WhatsAppStoreConfig, error) {
	args := m.Called(ctx, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WhatsAppStoreConfig), args.Error(1)
}

func (m *MockWhatsAppConfigRepo) ActiveNumberInUse(ctx context.Context, phoneNumber, excludeStore string) (bool, error) {
	args := m.Called(ctx, phoneNumber, excludeStore)
	return args.Bool(0), args.Error(1)
}

func (m *MockWhatsAppConfigRepo) SetAPIToken(ctx context.Context, storeName, apiToken string) error {
	return m.Called(ctx, storeName, apiToken).Error(0)
}

func (m *MockWhatsAppConfigRepo) Deactivate(ctx context.Context, storeName string) error {
	return m.Called(ctx, storeName).Error(0)
}

type MockStoreAPI struct {
	mock.Mock
}

func (m *MockStoreAPI) StoreInfo(ctx context.Context, config *model.WhatsAppStoreConfig) (map[string]interface{}, error) {
	args := m.Called(ctx, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockStoreAPI) Products(ctx context.Context, config *model.WhatsAppStoreConfig, limit int) ([]map[string]interface{}, error) {
	args := m.Called(ctx, config, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]interface{}), args.Error(1)
}

type MockEmailConfigRepo struct {
	mock.Mock
}

func (m *MockEmailConfigRepo) GetByStoreName(ctx context.Context, storeName string) (*model.EmailConfig, error) {
	args := m.Called(ctx, storeName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailConfig), args.Error(1)
}

func (m *MockEmailConfigRepo) GetActiveConfigs(ctx context.Context) ([]model.EmailConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EmailConfig), args.Error(1)
}

func (m *MockEmailConfigRepo) Upsert(ctx context.Context, config *model.EmailConfig) (*model.EmailConfig, error) {
	args := m.Called(ctx, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailConfig), args.Error(1)
}

func (m *MockEmailConfigRepo) Update(ctx context.Context, config *model.EmailConfig) error {
	return m.Called(ctx, config).Error(0)
}

func (m *MockEmailConfigRepo) Delete(ctx context.Context, storeName string) error {
	return m.Called(ctx, storeName).Error(0)
}

func (m *MockEmailConfigRepo) MarkPolled(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEmailConfigRepo) RecordError(ctx context.Context, id int64, message string) error {
	return m.Called(ctx, id, message).Error(0)
}

type MockMailbox struct {
	mock.Mock
}

func (m *MockMailbox) FetchUnseen(ctx context.Context, config *model.EmailConfig, limit int) ([]repository.InboxMessage, error) {
	args := m.Called(ctx, config, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.InboxMessage), args.Error(1)
}

func (m *MockMailbox) MarkSeen(ctx context.Context, config *model.EmailConfig, uids []uint32) error {
	return m.Called(ctx, config, uids).Error(0)
}

func (m *MockMailbox) Test(ctx context.Context, config *model.EmailConfig) error {
	return m.Called(ctx, config).Error(0)
}

type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) Send(ctx context.Context, config *model.EmailConfig, to, subject, body string) error {
	return m.Called(ctx, config, to, subject, body).Error(0)
}

type MockTwilioProvisioner struct {
	mock.Mock
}

func (m *MockTwilioProvisioner) SearchNumbers(ctx context.Context, country string, limit int) ([]model.AvailableNumber, string, error) {
	args := m.Called(ctx, country, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]model.AvailableNumber), args.String(1), args.Error(2)
}

func (m *MockTwilioProvisioner) PurchaseNumber(ctx context.Context, phoneNumber string) (*model.PurchasedNumber, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchasedNumber), args.Error(1)
}
