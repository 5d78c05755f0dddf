package webhooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/axcshop/axcshop-backend/internal/carrier"
	"github.com/axcshop/axcshop-backend/pkg/config"
	"github.com/axcshop/axcshop-backend/pkg/enums"
	pkgerrors "github.com/axcshop/axcshop-backend/pkg/errors"
)

type stubProcessor struct {
	result  *carrier.Result
	err     error
	payload *carrier.WebhookPayload
}

func (s *stubProcessor) Process(ctx context.Context, payload carrier.WebhookPayload) (*carrier.Result, error) {
	s.payload = &payload
	return s.result, s.err
}

const (
	testSecret    = "cx-secret"
	testAckSecret = "ack-secret"
)

func carrierHandler(proc *stubProcessor) http.HandlerFunc {
	cfg := config.CarrierConfig{Name: "swiftex", WebhookSecret: testSecret, AckHeaderSecret: testAckSecret}
	return CarrierWebhook(proc, carrier.NewAuthenticator(testSecret), cfg, nil)
}

func TestCarrierWebhookHandshakeSkipsSignature(t *testing.T) {
	proc := &stubProcessor{result: &carrier.Result{Event: enums.CarrierEventHandshake}}
	handler := carrierHandler(proc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/carrier", strings.NewReader(`{"event":"webhook_handshake"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get(AckHeader); got != testAckSecret {
		t.Fatalf("ack header missing, got %q", got)
	}
	if proc.payload == nil {
		t.Fatalf("handshake should still reach the processor")
	}
}

func TestCarrierWebhookRejectsBadSignature(t *testing.T) {
	proc := &stubProcessor{result: &carrier.Result{Event: enums.CarrierEventDelivered, Mutated: true}}
	handler := carrierHandler(proc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/carrier", strings.NewReader(`{"event":"delivered","consignment_id":"CN-1","merchant_order_id":"AXC-00001"}`))
	req.Header.Set(SignatureHeader, "wrong")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if proc.payload != nil {
		t.Fatalf("processor must not run on signature failure")
	}
}

func TestCarrierWebhookProcessesSignedEvent(t *testing.T) {
	proc := &stubProcessor{result: &carrier.Result{Event: enums.CarrierEventDelivered, Mutated: true}}
	handler := carrierHandler(proc)

	body := `{"event":"delivered","consignment_id":"CN-1","merchant_order_id":"AXC-00001","delivery_fee_minor":120,"collected_amount_minor":2350}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/carrier", strings.NewReader(body))
	req.Header.Set(SignatureHeader, testSecret)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get(AckHeader); got != testAckSecret {
		t.Fatalf("ack header missing, got %q", got)
	}
	if proc.payload == nil {
		t.Fatalf("processor not invoked")
	}
	if proc.payload.CollectedMinor != 2350 || proc.payload.DeliveryFeeMinor != 120 {
		t.Fatalf("amounts not forwarded: %+v", proc.payload)
	}
}

func TestCarrierWebhookAcksProcessingFailure(t *testing.T) {
	proc := &stubProcessor{err: pkgerrors.New(pkgerrors.CodeInternal, "db down")}
	handler := carrierHandler(proc)

	body := `{"event":"delivered","consignment_id":"CN-1","merchant_order_id":"AXC-00001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/carrier", strings.NewReader(body))
	req.Header.Set(SignatureHeader, testSecret)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("processing failures must still ack, got %d", resp.Code)
	}
	if got := resp.Header().Get(AckHeader); got != testAckSecret {
		t.Fatalf("ack header missing, got %q", got)
	}
}

func TestCarrierWebhookAcksMalformedBody(t *testing.T) {
	proc := &stubProcessor{}
	handler := carrierHandler(proc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/carrier", strings.NewReader(`{"event":`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("malformed pushes must ack, got %d", resp.Code)
	}
	if proc.payload != nil {
		t.Fatalf("processor must not run for malformed body")
	}
}
