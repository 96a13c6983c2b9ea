package payment

import "context"

// MockProcessor is a Processor whose behavior is set per test
type MockProcessor struct {
	CreateIntentFunc func(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntentFunc    func(ctx context.Context, id string) (*Intent, error)
	ParseWebhookFunc func(payload []byte, signature string) (*Event, error)
}

func (m *MockProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, req)
	}
	return &Intent{ID: "pi_mock", ClientSecret: "pi_mock_secret_mock", Status: "requires_payment_method", Amount: req.Amount}, nil
}

func (m *MockProcessor) GetIntent(ctx context.Context, id string) (*Intent, error) {
	if m.GetIntentFunc != nil {
		return m.GetIntentFunc(ctx, id)
	}
	return &Intent{ID: id, Status: StatusSucceeded, Metadata: map[string]string{}}, nil
}

func (m *MockProcessor) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if m.ParseWebhookFunc != nil {
		return m.ParseWebhookFunc(payload, signature)
	}
	return nil, ErrInvalidSignature
}

// MockConfirmer is a Confirmer whose behavior is set per test
type MockConfirmer struct {
	ConfirmFunc func(ctx context.Context, clientSecret string, card Card) (*Intent, error)
}

func (m *MockConfirmer) Confirm(ctx context.Context, clientSecret string, card Card) (*Intent, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, clientSecret, card)
	}
	id, _ := IntentIDFromSecret(clientSecret)
	return &Intent{ID: id, Status: StatusSucceeded}, nil
}
