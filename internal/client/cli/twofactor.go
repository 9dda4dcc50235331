package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/noteshelf/internal/filex"
)

const (
	qrFileName   = "2fa-qr.png"
	pngDataURI   = "data:image/png;base64,"
	qrPermission = 0o600
)

// writeQR decodes a PNG data URI into the session directory and returns the
// file path.
func (a *App) writeQR(dataURI string) (string, error) {
	if !strings.HasPrefix(dataURI, pngDataURI) {
		return "", fmt.Errorf("unexpected qr code format")
	}
	img, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, pngDataURI))
	if err != nil {
		return "", fmt.Errorf("decode qr code: %w", err)
	}
	dir, err := filex.EnsureSubdDir(a.config.SessionDir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, qrFileName)
	if err := os.WriteFile(path, img, qrPermission); err != nil {
		return "", err
	}
	return path, nil
}

// EnableTwoFactor creates a fresh secret, shows it with a QR code for an
// authenticator app and enables two-factor once a valid code is entered.
func (a *App) EnableTwoFactor(ctx context.Context) error {
	resp, err := a.client.Generate2FASecret(ctx, a.state.Name)
	if err != nil {
		return err
	}

	a.printf("Secret: %s\n", resp.Secret)
	if path, err := a.writeQR(resp.QRCode); err != nil {
		a.printf("QR code unavailable: %v\n", err)
	} else {
		a.printf("QR code saved to %s\n", path)
	}

	code, err := getSimpleText(a.reader, "Enter the code shown by your authenticator", a.out)
	if err != nil {
		return err
	}
	if err := a.client.Verify2FAToken(ctx, code, resp.Secret); err != nil {
		return err
	}
	a.printf("Two-factor authentication enabled\n")
	return nil
}

func (a *App) DisableTwoFactor(ctx context.Context) error {
	ok, err := confirm(a.reader, "Disable two-factor authentication?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.client.Disable2FA(ctx); err != nil {
		return err
	}
	a.printf("Two-factor authentication disabled\n")
	return nil
}
