package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchwork_back_end/internal/config"
	"patchwork_back_end/internal/logger"
	"patchwork_back_end/internal/models"
)

type captureSender struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (c *captureSender) Send(_ context.Context, e Email) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, e)
	return c.err
}

func sampleOrder() models.Order {
	return models.Order{
		ID:            gocql.TimeUUID(),
		CustomerEmail: "client@example.com",
		Items: []models.OrderItem{
			{Name: "Écusson <tigre>", Quantity: 2, UnitPriceCents: 1250, LineTotalCents: 2500},
		},
		ShippingCents: 599,
		TotalCents:    3099,
		Status:        models.OrderPendingReview,
	}
}

func TestMailNotifierOrderSubmitted(t *testing.T) {
	sender := &captureSender{}
	n := NewMailNotifier(sender, "https://boutique.example/", logger.Nop())

	o := sampleOrder()
	n.OrderSubmitted(o)
	n.Wait()

	require.Len(t, sender.sent, 1)
	e := sender.sent[0]
	assert.Equal(t, "client@example.com", e.To)
	assert.Contains(t, e.Subject, "validation")
	assert.Contains(t, e.HTML, "30,99 €")
	assert.Contains(t, e.HTML, "Écusson &lt;tigre&gt;")
	assert.Contains(t, e.HTML, "https://boutique.example/orders/"+o.ID.String())
	assert.Contains(t, e.HTML, "cid:"+qrName)
	require.Contains(t, e.Inline, qrName)
	assert.True(t, strings.HasPrefix(string(e.Inline[qrName]), "\x89PNG"))
}

func TestMailNotifierVariants(t *testing.T) {
	sender := &captureSender{}
	n := NewMailNotifier(sender, "", logger.Nop())

	o := sampleOrder()
	o.Status = models.OrderRejected
	o.ReviewNote = "Fichier trop flou"
	n.OrderReviewed(o)

	o.Status = models.OrderShipped
	n.OrderStatusChanged(o)

	n.RefundUpdated(models.Refund{Status: models.RefundApproved, AmountCents: 1500}, o)

	noEmail := sampleOrder()
	noEmail.CustomerEmail = ""
	n.OrderSubmitted(noEmail)
	n.Wait()

	require.Len(t, sender.sent, 3)
	assert.Contains(t, sender.sent[0].Subject, "refusée")
	assert.Contains(t, sender.sent[0].HTML, "Fichier trop flou")
	assert.NotContains(t, sender.sent[0].HTML, "cid:")
	assert.Nil(t, sender.sent[0].Inline)
	assert.Contains(t, sender.sent[1].Subject, "expédiée")
	assert.Contains(t, sender.sent[2].HTML, "15,00 €")
}

func TestMailNotifierSendFailureIsLogged(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	n := NewMailNotifier(sender, "", logger.Nop())

	assert.NotPanics(t, func() {
		n.OrderSubmitted(sampleOrder())
		n.Wait()
	})
	assert.Len(t, sender.sent, 1)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0,00 €", FormatCents(0))
	assert.Equal(t, "12,05 €", FormatCents(1205))
	assert.Equal(t, "-3,50 €", FormatCents(-350))
}

func TestMailerMessageEmbedsQRCode(t *testing.T) {
	m := NewMailer(config.SMTPConfig{From: "atelier@patchwork.local"}, logger.Nop())
	assert.False(t, m.Enabled())
	assert.ErrorIs(t, m.Send(context.Background(), Email{}), ErrMailDisabled)

	msg, err := m.buildMessage(Email{
		To:      "client@example.com",
		Subject: "Test",
		HTML:    "<p>ok</p>",
		Inline:  map[string][]byte{qrName: []byte("\x89PNG")},
	})
	require.NoError(t, err)

	var buf strings.Builder
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: Test")
	assert.Contains(t, buf.String(), qrName)

	_, err = m.buildMessage(Email{To: "pas une adresse"})
	assert.Error(t, err)
}
