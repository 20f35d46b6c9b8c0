package services

import (
	"log"

	"github.com/ivory-interiors/ivory-orders-api/models"
)

// Notifier defines the customer email operations the workflow triggers.
// Every dispatch is fire-and-forget: callers log failures and move on, a
// failed email never rolls back the change that triggered it.
type Notifier interface {
	SendOrderReceived(customer *models.Customer, order *models.Order) error
	SendStageChanged(customer *models.Customer, order *models.Order, stage *models.Stage) error
	SendInstallationScheduled(customer *models.Customer, order *models.Order, appointment *models.InstallationAppointment) error
	SendRatingRequest(customer *models.Customer, order *models.Order) error
	SendCustom(customer *models.Customer, order *models.Order, subject, body string) error
}

// ConsoleNotifier writes every email to the application log instead of
// sending it. It stands in for a real email provider.
type ConsoleNotifier struct{}

var notifierInstance Notifier = &ConsoleNotifier{}

// GetNotifier returns the active notifier instance
func GetNotifier() Notifier {
	return notifierInstance
}

// SetNotifier sets the notifier instance (primarily for testing)
func SetNotifier(n Notifier) {
	notifierInstance = n
}

// SendOrderReceived logs the order confirmation email
func (n *ConsoleNotifier) SendOrderReceived(customer *models.Customer, order *models.Order) error {
	log.Printf("[email] to=%s order=%s subject=%q body=%q",
		customer.Phone, order.OrderNumber,
		"We received your order",
		"Thank you for choosing Ivory Interiors. Your order "+order.OrderNumber+" is being prepared for measurement.")
	return nil
}

// SendStageChanged logs the stage progress email
func (n *ConsoleNotifier) SendStageChanged(customer *models.Customer, order *models.Order, stage *models.Stage) error {
	log.Printf("[email] to=%s order=%s subject=%q stage=%s status=%s",
		customer.Phone, order.OrderNumber,
		"Your order moved forward",
		models.StageLabel(stage.StageType), stage.Status)
	return nil
}

// SendInstallationScheduled logs the installation appointment email
func (n *ConsoleNotifier) SendInstallationScheduled(customer *models.Customer, order *models.Order, appointment *models.InstallationAppointment) error {
	log.Printf("[email] to=%s order=%s subject=%q scheduled_at=%s window=%s",
		customer.Phone, order.OrderNumber,
		"Your installation is scheduled",
		appointment.ScheduledAt.Format("2006-01-02"), appointment.TimeWindow)
	return nil
}

// SendRatingRequest logs the rating request email
func (n *ConsoleNotifier) SendRatingRequest(customer *models.Customer, order *models.Order) error {
	log.Printf("[email] to=%s order=%s subject=%q",
		customer.Phone, order.OrderNumber,
		"How did we do?")
	return nil
}

// SendCustom logs a staff-composed email
func (n *ConsoleNotifier) SendCustom(customer *models.Customer, order *models.Order, subject, body string) error {
	log.Printf("[email] to=%s order=%s subject=%q body=%q",
		customer.Phone, order.OrderNumber, subject, body)
	return nil
}
