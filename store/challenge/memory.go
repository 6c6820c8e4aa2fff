package challenge

import (
	"context"
	"sync"
	"time"

	"github.com/pandodao/zilt-wallet/core"
)

func NewMemory() core.ChallengeStore {
	return &memoryStore{
		challenges: map[string]core.VerificationChallenge{},
	}
}

type memoryStore struct {
	mux        sync.Mutex
	challenges map[string]core.VerificationChallenge
}

func (s *memoryStore) Find(_ context.Context, phone string) (*core.VerificationChallenge, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	c, ok := s.challenges[phone]
	if !ok {
		return nil, nil
	}

	return &c, nil
}

func (s *memoryStore) Save(_ context.Context, challenge *core.VerificationChallenge) error {
	s.mux.Lock()
	s.challenges[challenge.PhoneNumber] = *challenge
	s.mux.Unlock()
	return nil
}

func (s *memoryStore) Delete(_ context.Context, phone string) error {
	s.mux.Lock()
	delete(s.challenges, phone)
	s.mux.Unlock()
	return nil
}

func (s *memoryStore) Take(_ context.Context, phone string, match func(*core.VerificationChallenge) bool) (*core.VerificationChallenge, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	c, ok := s.challenges[phone]
	if !ok || !match(&c) {
		return nil, nil
	}

	delete(s.challenges, phone)
	return &c, nil
}

func (s *memoryStore) Purge(_ context.Context, sentBefore time.Time) (int, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	var n int
	for phone, c := range s.challenges {
		if c.SentAt.Before(sentBefore) {
			delete(s.challenges, phone)
			n++
		}
	}

	return n, nil
}
