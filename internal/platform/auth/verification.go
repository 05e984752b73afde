package auth

import (
	"encoding/base64"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"greekgeeks/internal/platform/config"
	"greekgeeks/internal/platform/models"
)

const verificationPurpose = "email_verification"

var ErrInvalidVerification = errors.New("invalid verification link")

type verificationClaims struct {
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// VerificationService issues and checks the signed links sent to new accounts.
// A token carries a fingerprint of the account state it was issued for, so it stops
// working as soon as the account is activated or its password changes.
type VerificationService struct {
	config config.VerificationConfig
	now    func() time.Time
}

func NewVerificationService(cfg config.VerificationConfig) *VerificationService {
	return &VerificationService{config: cfg, now: time.Now}
}

func accountState(user *models.User) []byte {
	return []byte(user.ID + "|" + strconv.FormatBool(user.IsActive) + "|" + user.PasswordHash)
}

// Generate returns the uidb64 and token pair for user.
func (s *VerificationService) Generate(user *models.User) (uidb64, token string, err error) {
	now := s.now()
	claims := verificationClaims{
		Purpose:     verificationPurpose,
		Fingerprint: Sign(s.config.Secret, accountState(user)),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", err
	}
	return EncodeUID(user.ID), token, nil
}

// URL builds the link placed in the verification email.
func (s *VerificationService) URL(uidb64, token string) string {
	return s.config.BaseURL + "/verify?uidb64=" + uidb64 + "&token=" + token
}

// Subject extracts the user id a token was issued for without checking account state.
// Callers load the account and pass it to Check.
func (s *VerificationService) Subject(uidb64, token string) (string, error) {
	userID, err := DecodeUID(uidb64)
	if err != nil {
		return "", ErrInvalidVerification
	}

	claims, err := s.parse(token)
	if err != nil || claims.Subject != userID {
		return "", ErrInvalidVerification
	}
	return userID, nil
}

// Check reports whether token is valid for the current state of user.
func (s *VerificationService) Check(user *models.User, token string) error {
	if user == nil || user.IsActive {
		return ErrInvalidVerification
	}

	claims, err := s.parse(token)
	if err != nil || claims.Subject != user.ID {
		return ErrInvalidVerification
	}
	if !Verify(s.config.Secret, accountState(user), claims.Fingerprint) {
		return ErrInvalidVerification
	}
	return nil
}

func (s *VerificationService) parse(tokenString string) (*verificationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &verificationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*verificationClaims)
	if !ok || !token.Valid || claims.Purpose != verificationPurpose {
		return nil, ErrInvalidVerification
	}
	return claims, nil
}

func EncodeUID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func DecodeUID(uidb64 string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(uidb64)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
