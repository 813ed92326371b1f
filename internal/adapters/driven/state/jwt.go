package state

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// JWTStateStore implements StateStore with signed stateless tokens: the
// returned state ID is the RS256-signed JWT carrying the whole state. Nothing
// is kept server side, which makes the store safe across instances without
// shared storage, at the cost of larger IDs and no real deletion.
type JWTStateStore struct {
	privateKey *rsa.PrivateKey
	ttl        time.Duration
}

// stateClaims carries the flow state and its stage tag.
type stateClaims struct {
	jwt.RegisteredClaims
	Stage string         `json:"stage"`
	State map[string]any `json:"state"`
}

// NewJWTStateStore creates a stateless store signing with the given key. A
// non-positive ttl falls back to DefaultTTL.
func NewJWTStateStore(privateKey *rsa.PrivateKey, ttl time.Duration) (*JWTStateStore, error) {
	if privateKey == nil {
		return nil, domain.ConfigError("jwt state store: private key is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JWTStateStore{privateKey: privateKey, ttl: ttl}, nil
}

// Save signs the state into a token and returns the token as the state ID.
func (s *JWTStateStore) Save(state domain.AuthState, stage string, addIDToState bool) (domain.StateID, error) {
	// The random ID goes into the state before signing, so the token and the
	// embedded ID stay consistent.
	jti := string(domain.NewStateID())

	saved := state.Copy()
	saved[domain.StateKeyStage] = stage
	if addIDToState {
		saved[domain.StateKeyStateID] = jti
	}

	now := time.Now()
	claims := stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Stage: stage,
		State: saved,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return "", domain.CollaboratorError("jwt signer", err)
	}

	if addIDToState {
		state[domain.StateKeyStateID] = jti
	}
	return domain.StateID(token), nil
}

// Load verifies the token and returns the embedded state. Tampered, expired
// and malformed tokens are indistinguishable from a lost state.
func (s *JWTStateStore) Load(id domain.StateID, stage string, allowMissing bool) (domain.AuthState, error) {
	parsed, err := jwt.ParseWithClaims(string(id), &stateClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return &s.privateKey.PublicKey, nil
	})
	if err != nil || !parsed.Valid {
		if allowMissing {
			return nil, nil
		}
		return nil, domain.StateLostError(tokenLogID(id))
	}

	claims, ok := parsed.Claims.(*stateClaims)
	if !ok {
		if allowMissing {
			return nil, nil
		}
		return nil, domain.StateLostError(tokenLogID(id))
	}
	if claims.Stage != stage {
		return nil, domain.StageMismatchError(domain.StateID(claims.ID), stage, claims.Stage)
	}
	return domain.AuthState(claims.State), nil
}

// Delete is a no-op: there is no server-side record to remove. The token
// stays valid until its expiry.
func (s *JWTStateStore) Delete(id domain.StateID) error {
	return nil
}

// tokenLogID truncates a token for error reporting so full tokens never end
// up in logs.
func tokenLogID(id domain.StateID) domain.StateID {
	const max = 16
	if len(id) <= max {
		return id
	}
	return id[:max] + "..."
}

var _ ports.StateStore = (*JWTStateStore)(nil)
