package util

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/smtp"
	"os"
	"sync"
	"time"
)

// VerificationCode represents a verification code with expiration
type VerificationCode struct {
	Code      string
	ExpiresAt time.Time
}

// In-memory storage for verification codes
var (
	emailVerificationCodes = make(map[string]VerificationCode)
	verificationMutex      sync.RWMutex
)

const verificationCodeTTL = 15 * time.Minute

// GenerateVerificationCode generates a random 6-digit code
func GenerateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// StoreEmailVerificationCode stores the verification code for an email
func StoreEmailVerificationCode(email, code string) {
	verificationMutex.Lock()
	defer verificationMutex.Unlock()

	emailVerificationCodes[email] = VerificationCode{
		Code:      code,
		ExpiresAt: time.Now().Add(verificationCodeTTL),
	}
}

// VerifyEmailCode verifies the email verification code. A code can only
// be used once; it is removed after a successful match.
func VerifyEmailCode(email, code string) bool {
	verificationMutex.Lock()
	defer verificationMutex.Unlock()

	storedCode, exists := emailVerificationCodes[email]
	if !exists {
		return false
	}

	if time.Now().After(storedCode.ExpiresAt) {
		delete(emailVerificationCodes, email)
		return false
	}

	if storedCode.Code != code {
		return false
	}

	delete(emailVerificationCodes, email)
	return true
}

// SendVerificationEmail sends a verification email via SMTP
func SendVerificationEmail(toEmail, code string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	fromEmail := os.Getenv("SMTP_EMAIL")
	password := os.Getenv("SMTP_PASSWORD")

	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}
	if smtpPort == "" {
		smtpPort = "587"
	}

	// Dev mode: without SMTP credentials, print the code to the console
	if fromEmail == "" || password == "" {
		log.Printf("[DEV MODE] email verification code: %s (to: %s)", code, toEmail)
		return nil
	}

	subject := "[ComfyStore] Verify your email address"
	body := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 10px;">
		<h1 style="color: #333; margin-bottom: 20px;">Verify your email</h1>
		<p style="color: #666; line-height: 1.6; margin-bottom: 30px;">
			Thanks for signing up for ComfyStore.<br>
			Enter the code below to finish verifying your email address.
		</p>
		<div style="background-color: #f8f9fa; padding: 30px; border-radius: 8px; text-align: center; margin-bottom: 30px;">
			<h2 style="color: #333; margin: 0; font-size: 36px; letter-spacing: 4px;">%s</h2>
		</div>
		<p style="color: #999; font-size: 14px; margin-bottom: 10px;">
			* This code is valid for 15 minutes.
		</p>
		<p style="color: #999; font-size: 14px;">
			* If you did not request this, you can safely ignore this email.
		</p>
	</div>
</body>
</html>
`, code)

	message := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		fromEmail, toEmail, subject, body,
	))

	auth := smtp.PlainAuth("", fromEmail, password, smtpHost)

	err := smtp.SendMail(
		smtpHost+":"+smtpPort,
		auth,
		fromEmail,
		[]string{toEmail},
		message,
	)
	if err != nil {
		log.Printf("failed to send verification email: %v", err)
		return fmt.Errorf("failed to send verification email: %v", err)
	}

	log.Printf("verification email sent: %s", toEmail)
	return nil
}

// CleanupExpiredCodes periodically removes expired verification codes
func CleanupExpiredCodes() {
	ticker := time.NewTicker(1 * time.Minute)
	go func() {
		for range ticker.C {
			verificationMutex.Lock()
			for email, code := range emailVerificationCodes {
				if time.Now().After(code.ExpiresAt) {
					delete(emailVerificationCodes, email)
				}
			}
			verificationMutex.Unlock()
		}
	}()
}
