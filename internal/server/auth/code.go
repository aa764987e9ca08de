package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"secureshare/internal/logging"
)

// GenerateCode returns a random six-digit verification code.
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		panic(fmt.Errorf("error generating verification code: %w", err))
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// CodeSender delivers a verification code to the user through an
// out-of-band channel.
type CodeSender interface {
	Send(ctx context.Context, email, code string) error
}

// LogSender writes codes to the server log. Development only; a real
// deployment plugs in a mail or SMS sender here.
type LogSender struct {
	Log logging.Logger
}

func (s *LogSender) Send(ctx context.Context, email, code string) error {
	s.Log.Info(ctx, "verification code issued", "email", email, "code", code)
	return nil
}
