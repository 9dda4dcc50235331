// Package twofactor implements TOTP enrollment and verification, the pending
// second-factor login challenges and per-account session cutoffs.
package twofactor

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	secretBytes = 20
	period      = 30
	digits      = 6
	skew        = 1
	qrSize      = 256
)

var b32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Authenticator generates and checks RFC 6238 codes: 30 second step, six
// digits, SHA-1, one step of drift either way.
type Authenticator struct {
	issuer string
	now    func() time.Time
}

func NewAuthenticator(issuer string) *Authenticator {
	return &Authenticator{issuer: issuer, now: time.Now}
}

// Enrollment is what an authenticator app needs to start producing codes.
type Enrollment struct {
	// Secret is base32 without padding.
	Secret string
	URI    string
	// QR is the provisioning URI rendered as a PNG data URI.
	QR string
}

// Enroll builds the enrollment of account. An empty secret means a fresh
// random one. An empty account is labelled with the issuer.
func (a *Authenticator) Enroll(account, secret string) (Enrollment, error) {
	if account == "" {
		account = a.issuer
	}
	opts := totp.GenerateOpts{
		Issuer:      a.issuer,
		AccountName: account,
		Period:      period,
		SecretSize:  secretBytes,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	}
	if secret != "" {
		raw, err := b32NoPadding.DecodeString(strings.ToUpper(strings.TrimRight(secret, "=")))
		if err != nil {
			return Enrollment{}, fmt.Errorf("totp secret: %w", err)
		}
		opts.Secret = raw
	}

	key, err := totp.Generate(opts)
	if err != nil {
		return Enrollment{}, fmt.Errorf("totp key: %w", err)
	}
	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return Enrollment{}, fmt.Errorf("qr image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Enrollment{}, fmt.Errorf("qr png: %w", err)
	}
	return Enrollment{
		Secret: key.Secret(),
		URI:    key.URL(),
		QR:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// VerifyCode reports whether code is valid for secret now. Anything other
// than six ASCII digits is rejected before any computation.
func (a *Authenticator) VerifyCode(code, secret string) bool {
	if len(code) != digits || !isNumeric(code) || secret == "" {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, a.now().UTC(), totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
