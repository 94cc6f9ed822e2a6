package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/airosofts/licensor/domain/auth"
	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/domain/checkout"
	"github.com/airosofts/licensor/domain/entitlement"
	"github.com/airosofts/licensor/domain/license"
	"github.com/airosofts/licensor/ports"
)

// Mock implementations for testing. Upserts follow the stores' key rules.

type mockCustomerStore struct {
	mu        sync.Mutex
	customers []billing.Customer
	findErr   error
	createErr error
}

func (m *mockCustomerStore) FindByEmail(ctx context.Context, email string) ([]billing.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	out := []billing.Customer{}
	for _, c := range m.customers {
		if c.Email == email {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCustomerStore) Create(ctx context.Context, c billing.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.customers {
		if existing.ID == c.ID {
			return ports.ErrDuplicate
		}
	}
	m.customers = append(m.customers, c)
	return nil
}

type mockSubscriptionStore struct {
	mu        sync.Mutex
	subs      map[string]billing.Subscription
	upsertErr error
	listErr   error
	updateErr error
}

func newMockSubscriptionStore(subs ...billing.Subscription) *mockSubscriptionStore {
	m := &mockSubscriptionStore{subs: make(map[string]billing.Subscription)}
	for _, s := range subs {
		m.subs[s.ID] = s
	}
	return m
}

func (m *mockSubscriptionStore) Upsert(ctx context.Context, sub billing.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.subs[sub.ID] = sub
	return nil
}

func (m *mockSubscriptionStore) Get(ctx context.Context, id string) (billing.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return billing.Subscription{}, ports.ErrNotFound
	}
	return s, nil
}

func (m *mockSubscriptionStore) ListByIDs(ctx context.Context, ids []string) ([]billing.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []billing.Subscription{}
	for _, id := range ids {
		if s, ok := m.subs[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSubscriptionStore) ListByCustomer(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []billing.Subscription{}
	for _, s := range m.subs {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSubscriptionStore) UpdateStatus(ctx context.Context, id string, status billing.SubscriptionStatus, periodEnd *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	s, ok := m.subs[id]
	if !ok {
		return ports.ErrNotFound
	}
	s.Status = status
	if periodEnd != nil {
		s.CurrentPeriodEnd = periodEnd
	}
	m.subs[id] = s
	return nil
}

func (m *mockSubscriptionStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

type mockLicenseStore struct {
	mu        sync.Mutex
	rows      []license.LicensedUser
	upsertErr error
	listErr   error
}

func (m *mockLicenseStore) Upsert(ctx context.Context, l license.LicensedUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for i, existing := range m.rows {
		if existing.SubscriptionID == l.SubscriptionID {
			l.ID = existing.ID
			m.rows[i] = l
			return nil
		}
	}
	m.rows = append(m.rows, l)
	return nil
}

func (m *mockLicenseStore) ListByEmail(ctx context.Context, email string) ([]license.LicensedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []license.LicensedUser{}
	for _, l := range m.rows {
		if l.Email == email {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLicenseStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type mockAccountStore struct {
	mu        sync.Mutex
	accounts  map[string]auth.Account
	upsertErr error
	getErr    error
	updateErr error
	gets      int
}

func newMockAccountStore(accounts ...auth.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: make(map[string]auth.Account)}
	for _, a := range accounts {
		m.accounts[a.Email] = a
	}
	return m
}

func (m *mockAccountStore) Upsert(ctx context.Context, a auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.accounts[a.Email] = a
	return nil
}

func (m *mockAccountStore) Get(ctx context.Context, email string) (auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return auth.Account{}, m.getErr
	}
	a, ok := m.accounts[email]
	if !ok {
		return auth.Account{}, ports.ErrNotFound
	}
	return a, nil
}

func (m *mockAccountStore) UpdatePassword(ctx context.Context, email string, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	a, ok := m.accounts[email]
	if !ok {
		return ports.ErrNotFound
	}
	a.PasswordHash = hash
	m.accounts[email] = a
	return nil
}

type mockSoftwareStore struct {
	mu         sync.Mutex
	entries    map[string]entitlement.Software
	listErr    error
	replaceErr error
	replaced   int
}

func newMockSoftwareStore(entries ...entitlement.Software) *mockSoftwareStore {
	m := &mockSoftwareStore{entries: make(map[string]entitlement.Software)}
	for _, e := range entries {
		m.entries[e.ProductID] = e
	}
	return m
}

func (m *mockSoftwareStore) ListByProductIDs(ctx context.Context, productIDs []string) ([]entitlement.Software, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []entitlement.Software{}
	for _, id := range productIDs {
		if e, ok := m.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockSoftwareStore) Replace(ctx context.Context, entries []entitlement.Software) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.entries = make(map[string]entitlement.Software)
	for _, e := range entries {
		m.entries[e.ProductID] = e
	}
	m.replaced++
	return nil
}

type mockPaymentProvider struct {
	mu            sync.Mutex
	payloads      map[string]checkout.Payload
	events        map[string]ports.WebhookEvent // signature -> event
	checkoutCalls int
	lastPriceID   string
	lastSuccess   string
	createErr     error
	getErr        error
	portalErr     error
}

func newMockPaymentProvider() *mockPaymentProvider {
	return &mockPaymentProvider{
		payloads: make(map[string]checkout.Payload),
		events:   make(map[string]ports.WebhookEvent),
	}
}

func (m *mockPaymentProvider) Name() string { return "mock" }

func (m *mockPaymentProvider) CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkoutCalls++
	m.lastPriceID = priceID
	m.lastSuccess = successURL
	if m.createErr != nil {
		return "", m.createErr
	}
	return "https://checkout.example.com/" + priceID, nil
}

func (m *mockPaymentProvider) GetCheckout(ctx context.Context, sessionID string) (checkout.Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return checkout.Payload{}, m.getErr
	}
	p, ok := m.payloads[sessionID]
	if !ok {
		return checkout.Payload{}, fmt.Errorf("no such session: %s", sessionID)
	}
	return p, nil
}

func (m *mockPaymentProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if m.portalErr != nil {
		return "", m.portalErr
	}
	return "https://billing.example.com/" + customerID + "?return=" + returnURL, nil
}

func (m *mockPaymentProvider) ParseWebhook(payload []byte, signature string) (ports.WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[signature]
	if !ok {
		return ports.WebhookEvent{}, fmt.Errorf("bad signature")
	}
	return ev, nil
}

type mockTokenService struct {
	issued []ports.Identity
}

func (m *mockTokenService) GenerateToken(email, customerID string) (string, time.Time, error) {
	m.issued = append(m.issued, ports.Identity{Email: email, CustomerID: customerID})
	return "token-for-" + email, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), nil
}

func (m *mockTokenService) ValidateToken(token string) (ports.Identity, error) {
	const prefix = "token-for-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return ports.Identity{}, fmt.Errorf("invalid token")
	}
	return ports.Identity{Email: token[len(prefix):]}, nil
}

type mockRecorder struct {
	mu            sync.Mutex
	provisioning  map[string]int // branch/outcome
	notifications map[string]int // template/outcome
	webhooks      map[string]int // type/outcome
	catalogSyncs  int
	catalogErrors int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		provisioning:  make(map[string]int),
		notifications: make(map[string]int),
		webhooks:      make(map[string]int),
	}
}

func (m *mockRecorder) RecordProvisioning(branch, outcome string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provisioning[branch+"/"+outcome]++
}

func (m *mockRecorder) RecordNotification(template, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[template+"/"+outcome]++
}

func (m *mockRecorder) RecordWebhook(eventType, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhooks[eventType+"/"+outcome]++
}

func (m *mockRecorder) RecordCatalogSync(entries int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.catalogErrors++
		return
	}
	m.catalogSyncs++
}
