package services

import (
	"sync"

	"github.com/ivory-interiors/ivory-orders-api/models"
)

// SentEmail records one dispatched notification for test assertions
type SentEmail struct {
	Kind        string // "order_received", "stage_changed", "installation_scheduled", "rating_request", "custom"
	Phone       string
	OrderNumber string
	StageType   string
	Subject     string
	Body        string
}

// MockNotifier is a mock implementation of Notifier for testing
type MockNotifier struct {
	sent []SentEmail
	// FailAll makes every dispatch return an error, for exercising the
	// fire-and-forget path.
	FailAll bool
	mu      sync.Mutex
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// SetAsMockForTesting sets this mock as the global notifier instance for testing
func (m *MockNotifier) SetAsMockForTesting() {
	SetNotifier(m)
}

func (m *MockNotifier) record(email SentEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return &notifyError{}
	}
	m.sent = append(m.sent, email)
	return nil
}

// SendOrderReceived records an order-received email
func (m *MockNotifier) SendOrderReceived(customer *models.Customer, order *models.Order) error {
	return m.record(SentEmail{Kind: "order_received", Phone: customer.Phone, OrderNumber: order.OrderNumber})
}

// SendStageChanged records a stage-changed email
func (m *MockNotifier) SendStageChanged(customer *models.Customer, order *models.Order, stage *models.Stage) error {
	return m.record(SentEmail{Kind: "stage_changed", Phone: customer.Phone, OrderNumber: order.OrderNumber, StageType: stage.StageType})
}

// SendInstallationScheduled records an installation-scheduled email
func (m *MockNotifier) SendInstallationScheduled(customer *models.Customer, order *models.Order, appointment *models.InstallationAppointment) error {
	return m.record(SentEmail{Kind: "installation_scheduled", Phone: customer.Phone, OrderNumber: order.OrderNumber})
}

// SendRatingRequest records a rating-request email
func (m *MockNotifier) SendRatingRequest(customer *models.Customer, order *models.Order) error {
	return m.record(SentEmail{Kind: "rating_request", Phone: customer.Phone, OrderNumber: order.OrderNumber})
}

// SendCustom records a staff-composed email
func (m *MockNotifier) SendCustom(customer *models.Customer, order *models.Order, subject, body string) error {
	return m.record(SentEmail{Kind: "custom", Phone: customer.Phone, OrderNumber: order.OrderNumber, Subject: subject, Body: body})
}

// Sent returns a copy of all recorded emails
func (m *MockNotifier) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentOfKind returns the recorded emails of one kind
func (m *MockNotifier) SentOfKind(kind string) []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentEmail
	for _, e := range m.sent {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Clear removes all recorded emails
func (m *MockNotifier) Clear() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}

type notifyError struct{}

func (e *notifyError) Error() string {
	return "mock notifier configured to fail"
}
