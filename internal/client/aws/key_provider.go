package aws

import (
	"context"
	"sync"

	"github.com/cyphera/cyphera-xdk/internal/config"
	"github.com/cyphera/cyphera-xdk/internal/helpers"
	"github.com/cyphera/cyphera-xdk/internal/interfaces"
	"github.com/pkg/errors"
)

// ErrInvalidSigningKey is returned when the stored key is not 32 bytes of hex.
var ErrInvalidSigningKey = errors.New("signing key must be 32 bytes of hex")

// SignerKeyProvider loads the transaction signing key through a
// SecretsProvider once and caches it for the life of the process.
type SignerKeyProvider struct {
	secrets        interfaces.SecretsProvider
	arnEnvVar      string
	fallbackEnvVar string

	mu  sync.Mutex
	key []byte
}

// NewSignerKeyProvider reads SIGNER_PRIVATE_KEY_ARN, falling back to SIGNER_PRIVATE_KEY.
func NewSignerKeyProvider(secrets interfaces.SecretsProvider) *SignerKeyProvider {
	return &SignerKeyProvider{
		secrets:        secrets,
		arnEnvVar:      config.EnvSignerKeyARN,
		fallbackEnvVar: config.EnvSignerKey,
	}
}

// PrivateKey returns a copy of the raw key. Failed lookups are not cached.
func (p *SignerKeyProvider) PrivateKey(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key == nil {
		secret, err := p.secrets.GetSecretString(ctx, p.arnEnvVar, p.fallbackEnvVar)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load signing key")
		}
		if !helpers.IsPrivateKeyValid(secret) {
			return nil, ErrInvalidSigningKey
		}
		key, err := helpers.DecodeHex(secret)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode signing key")
		}
		p.key = key
	}

	out := make([]byte, len(p.key))
	copy(out, p.key)
	return out, nil
}
