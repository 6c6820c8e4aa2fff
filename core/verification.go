package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type GateState uint8

const (
	GateStateIdle GateState = iota
	GateStateCodeSent
	GateStateVerified
	GateStateFailed
)

func (s GateState) String() string {
	switch s {
	case GateStateCodeSent:
		return "CodeSent"
	case GateStateVerified:
		return "Verified"
	case GateStateFailed:
		return "Failed"
	default:
		return "Idle"
	}
}

func (s GateState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *GateState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "CodeSent":
		*s = GateStateCodeSent
	case "Verified":
		*s = GateStateVerified
	case "Failed":
		*s = GateStateFailed
	default:
		*s = GateStateIdle
	}

	return nil
}

type VerificationChallenge struct {
	PhoneNumber string          `json:"phone_number"`
	Amount      decimal.Decimal `json:"amount"`
	SentAt      time.Time       `json:"sent_at"`
	State       GateState       `json:"state"`
	Attempts    int             `json:"attempts,omitempty"`
}

// VerificationService delivers and checks one-time codes out of band.
type VerificationService interface {
	SendCode(ctx context.Context, phoneNumber, purpose string) error
	CheckCode(ctx context.Context, phoneNumber, code string) error
}

// ChallengeStore keeps in-flight challenges. Find returns nil without error
// when no challenge exists for phoneNumber.
type ChallengeStore interface {
	Find(ctx context.Context, phoneNumber string) (*VerificationChallenge, error)
	Save(ctx context.Context, challenge *VerificationChallenge) error
	Delete(ctx context.Context, phoneNumber string) error
	// Take removes and returns the challenge of phoneNumber when match
	// accepts it, as one atomic step. It returns nil when there is no
	// challenge or match rejects it.
	Take(ctx context.Context, phoneNumber string, match func(*VerificationChallenge) bool) (*VerificationChallenge, error)
	Purge(ctx context.Context, sentBefore time.Time) (int, error)
}

// VerificationGate is the precondition the orchestrator enforces on gated
// deposits.
type VerificationGate interface {
	// Consume spends the verified challenge of phoneNumber for amount. A
	// challenge admits a single deposit.
	Consume(ctx context.Context, phoneNumber string, amount decimal.Decimal) error
}
