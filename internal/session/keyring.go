package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "fintrack-cli"

// KeyringStore persists the session in the OS keychain/credential manager
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a store using the default keychain service name
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService}
}

func (k *KeyringStore) Load(ctx context.Context) (Session, error) {
	token, err := k.get(TokenKey)
	if err != nil {
		return Session{}, err
	}
	user, err := k.get(UserKey)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

// Save writes both keys; an empty value removes its key
func (k *KeyringStore) Save(ctx context.Context, s Session) error {
	if err := k.set(TokenKey, s.Token); err != nil {
		return err
	}
	return k.set(UserKey, s.User)
}

func (k *KeyringStore) Clear(ctx context.Context) error {
	return errors.Join(k.delete(TokenKey), k.delete(UserKey))
}

func (k *KeyringStore) get(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load %s from keyring: %w", key, err)
	}
	return value, nil
}

func (k *KeyringStore) set(key, value string) error {
	if value == "" {
		return k.delete(key)
	}
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("failed to save %s to keyring: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) delete(key string) error {
	if err := keyring.Delete(k.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}
