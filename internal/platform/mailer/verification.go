package mailer

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const (
	verificationSubject = "Verify your GreekGeeks Account"
	verificationQRName  = "verify.png"
	verificationQRSize  = 256
)

// QRCode renders url as a PNG of size pixels square.
func QRCode(url string, size int) ([]byte, error) {
	if size < 128 || size > 2048 {
		return nil, fmt.Errorf("invalid size %d: must be between 128 and 2048", size)
	}

	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return qr.PNG(size)
}

// VerificationMessage is the email sent to a new account. The link is also
// attached as a QR code for opening on a phone; if rendering fails the email
// goes out without it.
func VerificationMessage(to, firstName, url string) Message {
	msg := Message{
		To:      []string{to},
		Subject: verificationSubject,
		Body: fmt.Sprintf("Hi %s,\n\nConfirm your email address to activate your GreekGeeks account:\n\n%s\n\n"+
			"If you did not sign up, you can ignore this email.\n", firstName, url),
	}

	png, err := QRCode(url, verificationQRSize)
	if err != nil {
		log.Warn().Err(err).Msg("failed to render verification QR code")
		return msg
	}
	msg.Attachments = []Attachment{{Name: verificationQRName, Data: png}}
	return msg
}
