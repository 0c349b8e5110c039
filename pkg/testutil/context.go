package testutil

import (
	"context"

	"onboard-gateway/internal/platform/middleware"
	"onboard-gateway/pkg/platform/middleware/device"
	"onboard-gateway/pkg/platform/middleware/metadata"
)

// BrowserContext builds the context the onboarding middleware chain hands to a
// service: request id, client metadata and the onboarding client id. Service
// tests use it to check what ends up on logs and audit events.
func BrowserContext(clientID, requestID, ip, userAgent string) context.Context {
	ctx := context.Background()
	ctx = middleware.WithRequestID(ctx, requestID)
	ctx = metadata.WithClientMetadata(ctx, ip, userAgent)
	return device.WithClientID(ctx, clientID)
}
