package greeted

import (
	"context"
	"fmt"
	"time"

	domainCommand "github.com/AzielCF/piebot/domains/command"
	"github.com/AzielCF/piebot/infrastructure/valkey"
	"github.com/sirupsen/logrus"
)

// ValkeyStore shares the greeted set across restarts and replicas. Each chat
// is one key written with SET NX, so concurrent first messages greet once.
type ValkeyStore struct {
	client *valkey.Client
	prefix string
	ttl    time.Duration
}

var _ domainCommand.IGreetedStore = (*ValkeyStore)(nil)

func NewValkeyStore(client *valkey.Client, ttl time.Duration) *ValkeyStore {
	return &ValkeyStore{
		client: client,
		prefix: client.Key("greeted") + ":",
		ttl:    ttl,
	}
}

func (s *ValkeyStore) fullKey(chatID string) string {
	return s.prefix + chatID
}

func (s *ValkeyStore) MarkGreeted(ctx context.Context, chatID string) (bool, error) {
	first, err := s.client.SetNX(ctx, s.fullKey(chatID), "1", s.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to mark %s as greeted: %w", chatID, err)
	}
	return first, nil
}

func (s *ValkeyStore) Len(ctx context.Context) int {
	n, err := s.client.CountKeys(ctx, s.prefix+"*")
	if err != nil {
		logrus.WithError(err).Warn("[GREETED] Failed to count greeted chats")
	}
	return n
}

func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}
