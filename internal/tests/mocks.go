package tests

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"freelance/internal/domain"
	"freelance/internal/repository"
	"freelance/internal/stripe"
)

// NewTestLogger returns a logger that discards output.
func NewTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateCallCount int32

	CreateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// GetUser returns a user for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

// ──────────────────────────────────────────────
// MOCK PROJECT REPOSITORY
// ──────────────────────────────────────────────

// MockProjectRepository is a mock implementation of ProjectRepository.
type MockProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project

	CreateCallCount int32

	CreateError error
}

// NewMockProjectRepository creates a new mock project repository.
func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{projects: make(map[string]*domain.Project)}
}

// AddProject adds a project to the mock repository.
func (m *MockProjectRepository) AddProject(project *domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[project.ID] = project
}

func (m *MockProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[project.ID] = project
	return nil
}

func (m *MockProjectRepository) CreateBatch(ctx context.Context, projects []*domain.Project) (int, error) {
	inserted := 0
	for _, p := range projects {
		if err := m.Create(ctx, p); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	project, ok := m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *project
	return &copy, nil
}

func (m *MockProjectRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Project
	for _, p := range m.projects {
		if p.CreatedBy == ownerID {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockProjectRepository) Update(ctx context.Context, id string, update domain.ProjectUpdate) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	project, ok := m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.Title != nil {
		project.Title = *update.Title
	}
	if update.Description != nil {
		project.Description = *update.Description
	}
	if update.Status != nil {
		project.Status = *update.Status
	}
	if update.Budget != nil {
		project.Budget = *update.Budget
	}
	project.UpdatedAt = time.Now()
	copy := *project
	return &copy, nil
}

func (m *MockProjectRepository) Delete(ctx context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	project, ok := m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(m.projects, id)
	return project, nil
}

// CountProjects returns the number of stored projects.
func (m *MockProjectRepository) CountProjects() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.projects)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateCallCount     int32
	TransitionCallCount int32

	CreateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.StripePaymentID == payment.StripePaymentID {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.StripePaymentID == intentID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// TransitionStatusByIntentID mirrors the conditional UPDATE of the real
// store: the transition only applies while the payment is Pending.
func (m *MockPaymentRepository) TransitionStatusByIntentID(ctx context.Context, intentID string, status domain.PaymentStatus) (bool, error) {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.StripePaymentID == intentID && p.Status == domain.PaymentStatusPending {
			p.Status = status
			p.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPaymentRepository) SetStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	payment.UpdatedAt = time.Now()
	return nil
}

func (m *MockPaymentRepository) List(ctx context.Context, offset, limit int) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]*domain.Payment, 0, len(m.payments))
	for _, p := range m.payments {
		copy := *p
		all = append(all, &copy)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// CountPayments returns the number of stored payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// GetPayment returns a payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

// ──────────────────────────────────────────────
// MOCK PAYMENT PROCESSOR
// ──────────────────────────────────────────────

// MockProcessor is a mock implementation of service.PaymentProcessor.
type MockProcessor struct {
	mu sync.Mutex

	CreateIntentCallCount int32
	LastParams            stripe.CreateIntentParams

	Intent      *stripe.Intent
	CreateError error
}

// NewMockProcessor creates a processor that returns the given intent.
func NewMockProcessor(intent *stripe.Intent) *MockProcessor {
	return &MockProcessor{Intent: intent}
}

func (m *MockProcessor) CreateIntent(ctx context.Context, params stripe.CreateIntentParams) (*stripe.Intent, error) {
	atomic.AddInt32(&m.CreateIntentCallCount, 1)
	m.mu.Lock()
	m.LastParams = params
	m.mu.Unlock()
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	return m.Intent, nil
}

// ──────────────────────────────────────────────
// MOCK RESET TOKEN STORE
// ──────────────────────────────────────────────

// MockTokenStore is an in-memory implementation of service.ResetTokenStore.
type MockTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewMockTokenStore creates a new mock token store.
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{tokens: make(map[string]string)}
}

func (m *MockTokenStore) Save(ctx context.Context, tokenID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenID] = email
	return nil
}

func (m *MockTokenStore) Consume(ctx context.Context, tokenID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email, ok := m.tokens[tokenID]
	if !ok {
		return "", false, nil
	}
	delete(m.tokens, tokenID)
	return email, true, nil
}

// ──────────────────────────────────────────────
// MOCK MAILER
// ──────────────────────────────────────────────

// MockMailer captures sent mail for assertions.
type MockMailer struct {
	mu sync.Mutex

	SendCallCount int32
	LastTo        string
	LastLink      string

	SendError error
}

// NewMockMailer creates a new mock mailer.
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	atomic.AddInt32(&m.SendCallCount, 1)
	m.mu.Lock()
	m.LastTo = to
	m.LastLink = resetLink
	m.mu.Unlock()
	return m.SendError
}
