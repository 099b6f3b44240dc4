package identity

import (
	"context"

	"go-leave/internal/domain"
)

//go:generate mockgen -source=provider.go -destination=mock/provider_mock.go -package=mock

// Provider turns an opaque credential into a verified identity. The domain
// core depends on this interface only; the credential scheme behind it is
// swappable.
type Provider interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}
