package logic

import (
	"errors"

	"github.com/fernet/fernet-go"

	"growth_engine/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_vault.go -package mocks growth_engine/logic IVault

var ErrInvalidToken = errors.New("token is invalid or signed with a different key")

// IVault encrypts and decrypts account credentials at rest.
type IVault interface {
	Encrypt(plain string) (string, error)
	Decrypt(token string) (string, error)
}

type vault struct {
	key *fernet.Key
}

func NewVault(cfg *shared.Config, logger shared.ILogger) IVault {
	key, err := fernet.DecodeKey(cfg.Secrets.EncryptionKey)
	if err != nil {
		logger.Errorf("Failed to decode encryption key: %v", err)
		panic(err)
	}
	return &vault{key: key}
}

func (v *vault) Encrypt(plain string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plain), v.key)
	if err != nil {
		return "", err
	}
	return string(tok), nil
}

func (v *vault) Decrypt(token string) (string, error) {
	// TTL 0: tokens never expire; credentials live as long as the account
	msg := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{v.key})
	if msg == nil {
		return "", ErrInvalidToken
	}
	return string(msg), nil
}
