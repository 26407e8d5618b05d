// Package notify envía la factura de una orden por SMS o WhatsApp a través
// de un proveedor HTTP externo. El envío es best-effort: un fallo se loguea
// y nunca afecta la confirmación de la orden.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/pkg/config"
	"github.com/taborder/ussd-api/pkg/logger"
)

// InvoiceSender notifica facturas al proveedor configurado. Con URL vacía
// opera en modo simulado: solo deja registro en el log.
type InvoiceSender struct {
	url            string
	apiKey         string
	preferWhatsApp bool
	client         *http.Client
	log            *logger.Logger
}

// New construye el sender a partir de la configuración.
func New(cfg config.NotifyConfig, log *logger.Logger) *InvoiceSender {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &InvoiceSender{
		url:            cfg.URL,
		apiKey:         cfg.APIKey,
		preferWhatsApp: cfg.PreferWhatsApp,
		client:         &http.Client{Timeout: timeout},
		log:            log,
	}
}

type invoicePayload struct {
	Phone         string `json:"phone"`
	OrderNumber   string `json:"order_number"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"payment_method"`
	Channel       string `json:"channel"`
}

// SendInvoice envía la factura de la orden. Devuelve error solo con fines de
// log; el caller no debe condicionar su flujo al resultado.
func (s *InvoiceSender) SendInvoice(ctx context.Context, order *entity.Order) error {
	if s.url == "" {
		s.log.Info().
			Str("order", order.OrderNumber).
			Str("phone", order.Phone).
			Msg("factura simulada enviada (sin proveedor configurado)")
		return nil
	}

	channel := "sms"
	if s.preferWhatsApp {
		channel = "whatsapp"
	}
	payload := invoicePayload{
		Phone:         order.Phone,
		OrderNumber:   order.OrderNumber,
		Total:         order.Total.StringFixed(2),
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		Channel:       channel,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build invoice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send invoice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("send invoice: proveedor respondió %d", resp.StatusCode)
	}
	s.log.Info().
		Str("order", order.OrderNumber).
		Str("phone", order.Phone).
		Str("channel", channel).
		Msg("factura enviada")
	return nil
}
