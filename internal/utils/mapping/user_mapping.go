package mapping

import (
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	"github.com/SscSPs/user_accounts_service/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:           d.UserID,
		Username:         d.Username,
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		FullName:         d.FullName,
		AvatarURL:        nullable(d.AvatarURL),
		CoverImageURL:    nullable(d.CoverImageURL),
		RefreshTokenHash: d.RefreshTokenHash,
		AuditFields: models.AuditFields{
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:           m.UserID,
		Username:         m.Username,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		FullName:         m.FullName,
		AvatarURL:        deref(m.AvatarURL),
		CoverImageURL:    deref(m.CoverImageURL),
		RefreshTokenHash: m.RefreshTokenHash,
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
