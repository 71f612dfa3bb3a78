package service_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/repository"
	"mutuelle-membership/internal/service"
)

// memRequests is an in-memory RequestRepository. Documents are stored
// encoded so callers never share memory with the store, and Update holds a
// lock for the whole read-modify-write.
type memRequests struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemRequests(reqs ...domain.MembershipRequest) *memRequests {
	m := &memRequests{docs: map[string][]byte{}}
	for _, r := range reqs {
		if r.Payments == nil {
			r.Payments = []domain.Payment{}
		}
		m.docs[r.ID], _ = json.Marshal(r)
	}
	return m
}

func (m *memRequests) load(id string) (*domain.MembershipRequest, error) {
	raw, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	req := &domain.MembershipRequest{}
	if err := json.Unmarshal(raw, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (m *memRequests) store(req *domain.MembershipRequest) {
	m.docs[req.ID], _ = json.Marshal(req)
}

// get returns the stored document, failing loudly in tests when absent.
func (m *memRequests) get(id string) *domain.MembershipRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, err := m.load(id)
	if err != nil {
		panic(err)
	}
	return req
}

func (m *memRequests) Create(ctx context.Context, req *domain.MembershipRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(req)
	return nil
}

func (m *memRequests) GetByID(ctx context.Context, id string) (*domain.MembershipRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, repository.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(id)
}

func (m *memRequests) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.MembershipRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MembershipRequest
	for id := range m.docs {
		req, _ := m.load(id)
		if req.Status == status {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memRequests) Update(ctx context.Context, id string, fn repository.Mutator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, err := m.load(id)
	if err != nil {
		return err
	}
	write, err := fn(req)
	if err != nil || !write {
		return err
	}
	req.UpdatedAt = time.Now().UTC()
	m.store(req)
	return nil
}

func (m *memRequests) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, patch *domain.RequestPatch) error {
	return m.Update(ctx, id, func(req *domain.MembershipRequest) (bool, error) {
		if err := domain.CheckTransition(req.Status, status); err != nil {
			return false, err
		}
		patch.Apply(req)
		req.Status = status
		return true, nil
	})
}

func (m *memRequests) MarkAsPaid(ctx context.Context, id string, info domain.PaymentInfo) error {
	return m.markAsPaid(ctx, id, info, false)
}

func (m *memRequests) MarkAsPaidOnce(ctx context.Context, id string, info domain.PaymentInfo) error {
	return m.markAsPaid(ctx, id, info, true)
}

func (m *memRequests) markAsPaid(ctx context.Context, id string, info domain.PaymentInfo, once bool) error {
	return m.Update(ctx, id, func(req *domain.MembershipRequest) (bool, error) {
		if once && req.IsPaid {
			return false, repository.ErrAlreadyPaid
		}
		req.Payments = append(req.Payments, domain.NewPayment(info, time.Now().UTC()))
		req.IsPaid = true
		return true, nil
	})
}

func (m *memRequests) GetStatistics(ctx context.Context) (*domain.RequestStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &domain.RequestStatistics{}
	for id := range m.docs {
		req, _ := m.load(id)
		stats.Add(req.Status, req.IsPaid, 1)
	}
	stats.ComputeRates()
	return stats, nil
}

// MockAdminRepo
type MockAdminRepo struct {
	mock.Mock
}

func (m *MockAdminRepo) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) CreateNotification(ctx context.Context, module, entityID, notificationType, title, message string, metadata map[string]string) error {
	args := m.Called(ctx, module, entityID, notificationType, title, message, metadata)
	return args.Error(0)
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, notificationID string) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}

// expectNotification allows one notification of the given type.
func (m *MockNotificationService) expectNotification(notificationType string, err error) *mock.Call {
	return m.On("CreateNotification", mock.Anything, domain.NotificationModuleMembership, mock.Anything, notificationType,
		mock.Anything, mock.Anything, mock.Anything).Return(err)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendCorrectionRequest(ctx context.Context, email, name, message string) error {
	args := m.Called(ctx, email, name, message)
	return args.Error(0)
}

func (m *MockEmailService) SendCredentials(ctx context.Context, email, name string, document service.Attachment, downloadURL string) error {
	args := m.Called(ctx, email, name, document, downloadURL)
	return args.Error(0)
}

func (m *MockEmailService) SendRejection(ctx context.Context, email, name, reason string) error {
	args := m.Called(ctx, email, name, reason)
	return args.Error(0)
}

// MockAccountCreator
type MockAccountCreator struct {
	mock.Mock
}

func (m *MockAccountCreator) CreateMemberAccount(ctx context.Context, in domain.AccountCreationRequest) (*domain.AccountCreationResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountCreationResult), args.Error(1)
}

// MockCredentialDeliverer
type MockCredentialDeliverer struct {
	mock.Mock
}

func (m *MockCredentialDeliverer) Deliver(ctx context.Context, requestID string, doc domain.CredentialDocument) error {
	args := m.Called(ctx, requestID, doc)
	return args.Error(0)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, module string, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, module, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPushSender
type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Push(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func ptr[T any](v T) *T { return &v }
