package jwtauth

import (
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/platform/middleware"
)

// MiddlewareAdapter exposes the JWT service through the middleware's
// validator interface.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{
		Subject: claims.Subject,
		Email:   claims.Email,
	}, nil
}
