package push

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"crewcall/internal/model"
	"crewcall/internal/repository"
)

// Service manages device push registrations and fans sends out to all of a
// user's devices.
type Service struct {
	tokens  repository.DeviceTokenRepository
	gateway Gateway
}

// NewService creates a push service.
func NewService(tokens repository.DeviceTokenRepository, gateway Gateway) *Service {
	return &Service{tokens: tokens, gateway: gateway}
}

// Register stores a device token for the user.
func (s *Service) Register(ctx context.Context, uid uuid.UUID, token, platform string) error {
	return s.tokens.Upsert(ctx, &model.DeviceToken{
		UserID:   uid,
		Token:    token,
		Platform: platform,
	})
}

// Unregister removes a device token.
func (s *Service) Unregister(ctx context.Context, uid uuid.UUID, token string) error {
	return s.tokens.DeleteByToken(ctx, uid, token)
}

// SendToUser delivers to every device the user registered. Per-device
// failures are logged and do not stop the remaining sends; an error is
// returned only when every send failed.
func (s *Service) SendToUser(ctx context.Context, uid uuid.UUID, title, body string, data map[string]string) error {
	devices, err := s.tokens.ListByUser(ctx, uid)
	if err != nil {
		return fmt.Errorf("list device tokens: %w", err)
	}
	if len(devices) == 0 {
		return nil
	}

	failed := 0
	for _, d := range devices {
		if err := s.gateway.Send(ctx, d.Token, title, body, data); err != nil {
			log.Printf("push: send to device %s of %s: %v", d.ID, uid, err)
			failed++
		}
	}
	if failed == len(devices) {
		return fmt.Errorf("push to %s failed on all %d devices", uid, failed)
	}
	return nil
}
