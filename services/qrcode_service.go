// services/qrcode_service.go
package services

import (
	"errors"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder matches qrcode.Encode so tests can swap the encoder.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// JoinLink is the page URL that opens the dashboard with joinCode pre-filled.
func JoinLink(applicationURL, joinCode string) string {
	return strings.TrimRight(applicationURL, "/") + "/?code=" + url.QueryEscape(joinCode)
}

// GenerateJoinQRCode renders the join link for joinCode as a size×size PNG.
func GenerateJoinQRCode(applicationURL, joinCode string, size int, encode QRCodeEncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid dimensions: size must be positive")
	}
	if strings.TrimSpace(joinCode) == "" {
		return nil, errors.New("join code is required")
	}
	png, err := encode(JoinLink(applicationURL, joinCode), qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
