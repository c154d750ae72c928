package tokens

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/office-lunch/backend/internal/models"
	"github.com/office-lunch/backend/pkg/crypto"
)

// Store is the persistence surface the service needs. Implemented by
// Repository; faked in tests.
type Store interface {
	Insert(ctx context.Context, t *models.APIToken) error
	GetByHash(ctx context.Context, hash string) (*models.APIToken, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.APIToken, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.APITokenPublic, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// CreatedToken is the creation response. Token carries the plaintext
// secret; this is the only time it is ever returned.
type CreatedToken struct {
	ID        uuid.UUID  `json:"id"`
	Token     string     `json:"token"`
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Service implements the API token lifecycle: hashed storage, expiry
// validation with last-used bookkeeping, and the optional encrypted
// reveal copy.
type Service struct {
	store  Store
	enc    *crypto.Encryptor
	prefix string
	now    func() time.Time
}

// NewService creates a token service. enc may be disabled, in which case
// new tokens carry no reveal copy.
func NewService(store Store, enc *crypto.Encryptor, prefix string) *Service {
	return &Service{store: store, enc: enc, prefix: prefix, now: time.Now}
}

// Prefix returns the token prefix, used by the auth middleware to route
// bearer credentials.
func (s *Service) Prefix() string { return s.prefix }

// Create generates a token for the user and stores its hash. When the
// encryptor is enabled an encrypted copy is stored too, backing the
// reveal feature.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string, expiresAt *time.Time) (*CreatedToken, error) {
	plaintext, err := Generate(s.prefix)
	if err != nil {
		return nil, err
	}
	t := &models.APIToken{
		UserID:    userID,
		TokenHash: Hash(plaintext),
		Name:      name,
		ExpiresAt: expiresAt,
	}
	if s.enc != nil && s.enc.Enabled() {
		sealed, err := s.enc.Encrypt(plaintext)
		if err != nil {
			return nil, err
		}
		t.EncryptedToken = sealed
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}
	return &CreatedToken{
		ID:        t.ID,
		Token:     plaintext,
		Name:      t.Name,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}, nil
}

// Validate resolves a presented token to its owning user ID. Unknown and
// expired tokens both yield ErrInvalidToken, and expired tokens do not
// get their last-used timestamp touched.
func (s *Service) Validate(ctx context.Context, plaintext string) (uuid.UUID, error) {
	t, err := s.store.GetByHash(ctx, Hash(plaintext))
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	if t.ExpiresAt != nil && !t.ExpiresAt.After(s.now()) {
		return uuid.Nil, ErrInvalidToken
	}
	if err := s.store.TouchLastUsed(ctx, t.ID); err != nil {
		return uuid.Nil, err
	}
	return t.UserID, nil
}

// ListForUser returns the user's tokens without hashes or secrets.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.APITokenPublic, error) {
	return s.store.ListForUser(ctx, userID)
}

// Reveal decrypts the stored copy of an owned token. Tokens created
// without an encrypted copy cannot be revealed.
func (s *Service) Reveal(ctx context.Context, id, userID uuid.UUID) (string, error) {
	t, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		return "", err
	}
	if t.EncryptedToken == "" || s.enc == nil || !s.enc.Enabled() {
		return "", ErrRevealUnavailable
	}
	return s.enc.Decrypt(t.EncryptedToken)
}

// Delete removes one token scoped to its owner.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	deleted, err := s.store.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// DeleteAllForUser removes every token of a user, returning the count.
func (s *Service) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.store.DeleteAllForUser(ctx, userID)
}

// Sweep purges expired tokens and returns how many were removed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	return s.store.DeleteExpired(ctx, s.now())
}
