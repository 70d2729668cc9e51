// internal/domain/notification/message.go
package notification

import (
	"fmt"
	"strings"

	"reminder_notifier/internal/domain/obligation"
	"reminder_notifier/internal/domain/person"
)

const signature = "Automatic Notification System"

// Message is a rendered reminder, shared by every channel driver.
type Message struct {
	Subject string
	Body    string
}

// KindForDirection maps an obligation direction to its reminder kind.
func KindForDirection(d obligation.Direction) Kind {
	if d == obligation.DirectionReceivable {
		return KindReceivableReminder
	}
	return KindPayableReminder
}

// DueAlert returns the due-date line of a payment reminder.
func DueAlert(daysUntilDue int) string {
	if daysUntilDue == 0 {
		return "Due TODAY!"
	}
	return fmt.Sprintf("%d day(s) until due", daysUntilDue)
}

// BirthdayMessage renders the birthday greeting for p.
func BirthdayMessage(p *person.Person) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Happy Birthday, %s!\n\n", p.Name)
	b.WriteString("Today is a very special day! We wish you a happy birthday full of joy, health and achievements.\n")
	b.WriteString("May this new year of life be amazing!\n\n")
	b.WriteString(signature)
	return Message{
		Subject: fmt.Sprintf("Happy Birthday, %s!", p.Name),
		Body:    b.String(),
	}
}

// PaymentReminderMessage renders a reminder for o addressed to p.
func PaymentReminderMessage(p *person.Person, o *obligation.Obligation, daysUntilDue int) Message {
	typeText := "Payment"
	if o.Direction == obligation.DirectionReceivable {
		typeText = "Receivable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s reminder\n\n", typeText)
	fmt.Fprintf(&b, "Hello, %s!\n\n", p.Name)
	fmt.Fprintf(&b, "This is a reminder about the following %s:\n\n", strings.ToLower(typeText))
	fmt.Fprintf(&b, "Description: %s\n", o.Description)
	fmt.Fprintf(&b, "Amount: %.2f\n", o.Amount)
	fmt.Fprintf(&b, "Due date: %s\n", o.DueDate.Format("02/01/2006"))
	if o.Category.Valid && o.Category.String != "" {
		fmt.Fprintf(&b, "Category: %s\n", o.Category.String)
	}
	fmt.Fprintf(&b, "\n%s\n", DueAlert(daysUntilDue))
	if o.Notes.Valid && o.Notes.String != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", o.Notes.String)
	}
	b.WriteString("\n")
	b.WriteString(signature)

	return Message{
		Subject: fmt.Sprintf("Reminder: %s - %s", typeText, o.Description),
		Body:    b.String(),
	}
}
