// Package alert sends low-stock notifications to chat webhooks.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/zulandar/shamba/internal/models"
)

// Message is a notification rendered by each notifier in its own style.
type Message struct {
	Title  string
	Body   string
	Fields []Field
}

// Field is one labelled line of a message.
type Field struct {
	Name  string
	Value string
}

// Notifier delivers messages to one destination.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// LowStockMessage describes items at or below their minimum quantity.
func LowStockMessage(items []models.InventoryItem) Message {
	msg := Message{
		Title: fmt.Sprintf("Low stock: %d item(s)", len(items)),
		Body:  "These items are at or below their minimum quantity.",
	}
	for _, it := range items {
		value := it.Quantity.String() + " " + it.Unit
		if it.MinQuantity.Valid {
			value += " (min " + it.MinQuantity.Decimal.String() + ")"
		}
		msg.Fields = append(msg.Fields, Field{Name: it.Name, Value: value})
	}
	return msg
}

// Text renders a message as plain text.
func (m Message) Text() string {
	var b strings.Builder
	b.WriteString(m.Title)
	if m.Body != "" {
		b.WriteString("\n")
		b.WriteString(m.Body)
	}
	for _, f := range m.Fields {
		fmt.Fprintf(&b, "\n- %s: %s", f.Name, f.Value)
	}
	return b.String()
}

// Broadcast sends msg to every notifier. A failing notifier does not stop
// the rest; the joined errors are returned.
func Broadcast(ctx context.Context, notifiers []Notifier, msg Message) error {
	var errs []error
	for _, n := range notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			log.Printf("alert: %s: %v", n.Name(), err)
			errs = append(errs, fmt.Errorf("alert: %s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// LowStockSource lists the items that need restocking.
type LowStockSource interface {
	LowStock() ([]models.InventoryItem, error)
}

// CheckLowStock notifies about low-stock items and returns how many were
// found. Nothing is sent when every item is stocked.
func CheckLowStock(ctx context.Context, src LowStockSource, notifiers []Notifier) (int, error) {
	items, err := src.LowStock()
	if err != nil {
		return 0, fmt.Errorf("alert: low stock: %w", err)
	}
	if len(items) == 0 || len(notifiers) == 0 {
		return len(items), nil
	}
	return len(items), Broadcast(ctx, notifiers, LowStockMessage(items))
}

// FromConfig builds the notifiers for the configured webhook URLs.
func FromConfig(slackURL, discordURL string) ([]Notifier, error) {
	var out []Notifier
	if slackURL != "" {
		out = append(out, NewSlack(slackURL))
	}
	if discordURL != "" {
		d, err := NewDiscord(discordURL)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
