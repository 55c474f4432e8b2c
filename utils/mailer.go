// utils/mailer.go
package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"gopkg.in/gomail.v2"

	"github.com/worldclasstravels/wct_backend/models"
)

// Mailer wraps a single SMTP dialer configured at startup. The dialer is
// shared by every request; the underlying transport queues its own sends.
type Mailer struct {
	dialer       *gomail.Dialer
	from         string
	supportEmail string
	supportPhone string
	logger       *log.Logger
}

// NewMailerFromEnv builds the shared mailer from SMTP_HOST, SMTP_PORT,
// SMTP_USER, SMTP_PASS and FROM_EMAIL.
func NewMailerFromEnv() (*Mailer, error) {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromEmail := os.Getenv("FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = smtpUser
	}

	if smtpHost == "" || smtpPortStr == "" || smtpUser == "" || smtpPass == "" {
		return nil, errors.New("missing SMTP configuration")
	}

	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port: %v", err)
	}

	supportEmail := os.Getenv("SUPPORT_EMAIL")
	if supportEmail == "" {
		supportEmail = "support@worldclasstravels.com"
	}
	supportPhone := os.Getenv("SUPPORT_PHONE")
	if supportPhone == "" {
		supportPhone = "+1 (555) 123-4567"
	}

	return &Mailer{
		dialer:       gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass),
		from:         fromEmail,
		supportEmail: supportEmail,
		supportPhone: supportPhone,
		logger:       log.New(os.Stdout, "[MAIL] ", log.LstdFlags),
	}, nil
}

func (m *Mailer) send(msg *gomail.Message) error {
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendVerificationOTP mails the registration code.
func (m *Mailer) SendVerificationOTP(email, firstName, otp string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Email Verification</h2>
			<p>Hello %s,</p>
			<p>Thank you for registering with WorldClassTravels. Please use the following OTP to verify your email address:</p>
			<div style="background: #f4f4f4; padding: 10px; text-align: center; margin: 20px 0;">
				<h1 style="margin: 0; letter-spacing: 5px;">%s</h1>
			</div>
			<p>This OTP is valid for 10 minutes.</p>
			<p>If you didn't request this, please ignore this email.</p>
			<p>Best regards,<br>WorldClassTravels Team</p>
		</div>
	`, firstName, otp)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Verify Your Email - WorldClassTravels")
	msg.SetBody("text/html", body)

	return m.send(msg)
}

// SendPasswordResetOTP mails the password-reset code.
func (m *Mailer) SendPasswordResetOTP(email, firstName, otp string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Reset Your Password</h2>
			<p>Hello %s,</p>
			<p>You have requested to reset your password. Please use the following OTP code to verify your request:</p>
			<div style="background: #f4f4f4; padding: 10px; text-align: center; margin: 20px 0;">
				<h1 style="margin: 0; letter-spacing: 5px;">%s</h1>
			</div>
			<p>This code will expire in 10 minutes.</p>
			<p>If you did not request a password reset, please ignore this email or contact support if you have concerns.</p>
			<p>Thank you,<br>The WorldClassTravels Team</p>
		</div>
	`, firstName, otp)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Password Reset OTP - WorldClassTravels")
	msg.SetBody("text/html", body)

	return m.send(msg)
}

// SendTicketConfirmation mails the booking acknowledgement with a QR code of
// the booking reference attached. Errors are returned for the caller to log;
// this path never fails a booking.
func (m *Mailer) SendTicketConfirmation(ticket *models.Ticket) error {
	returnRow := ""
	if ticket.ReturnDate != nil {
		returnRow = fmt.Sprintf("<p><strong>Return Date:</strong> %s</p>", ticket.ReturnDate.Format("Jan 2, 2006"))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
			<h2>Thank You for Your Flight Booking Request</h2>
			<p>Dear %s %s,</p>
			<p>We've received your flight booking request with the following details:</p>
			<div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
				<h3 style="color: #2c3e50; margin-top: 0;">Booking Details</h3>
				<p><strong>Booking Reference:</strong> %s</p>
				<p><strong>Trip Type:</strong> %s</p>
				<p><strong>Departure:</strong> %s</p>
				<p><strong>Arrival:</strong> %s</p>
				<p><strong>Departure Date:</strong> %s</p>
				%s
				<p><strong>Cabin Class:</strong> %s</p>
				<p><strong>Passengers:</strong> %d</p>
			</div>
			<p>Our team is currently processing your request and will contact you shortly to confirm your booking and discuss the next steps.</p>
			<p>If you have any questions or need immediate assistance, please contact our customer support at %s or call us at %s.</p>
			<p>Thank you for choosing WorldClassTravels for your travel needs!</p>
			<p>Best regards,<br>The WorldClassTravels Team</p>
			<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #777;">
				<p>This is an automated email. Please do not reply to this message.</p>
			</div>
		</div>
	`, ticket.UserFirstName, ticket.UserLastName, ticket.ID.Hex(), ticket.TripType,
		ticket.DepartureLocation, ticket.ArrivalLocation, ticket.DepartureDate.Format("Jan 2, 2006"),
		returnRow, ticket.CabinType, ticket.Passengers, m.supportEmail, m.supportPhone)

	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("\"WorldClassTravels\" <%s>", m.from))
	msg.SetHeader("To", ticket.UserEmail)
	msg.SetHeader("Subject", "Your Flight Booking Request - WorldClassTravels")
	msg.SetBody("text/html", body)

	if qrPNG, err := bookingReferenceQR(ticket.ID.Hex()); err == nil {
		msg.Attach("booking-reference.png", gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(qrPNG)
			return err
		}))
	} else {
		m.logger.Printf("Failed to render booking reference QR: %v", err)
	}

	return m.send(msg)
}

// bookingReferenceQR renders the booking reference as a 200x200 QR PNG.
func bookingReferenceQR(reference string) ([]byte, error) {
	code, err := qr.Encode(reference, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	code, err = barcode.Scale(code, 200, 200)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
