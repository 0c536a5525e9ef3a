// Package mailer delivers a finished HTML report to one recipient over an
// implicit-TLS (SMTPS) relay.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/seenimoa/bizreport/internal/config"
)

var (
	// ErrFileRead means the report file could not be read; nothing was sent.
	ErrFileRead = errors.New("mailer: cannot read report file")
	// ErrAuthentication means the relay refused the credentials.
	ErrAuthentication = errors.New("mailer: authentication failed")
	// ErrTransport covers dial, TLS, I/O and timeout failures.
	ErrTransport = errors.New("mailer: transport failure")
	// ErrRejected means the relay refused the sender, recipient or message.
	ErrRejected = errors.New("mailer: message rejected by relay")
)

// DefaultTimeout bounds the whole SMTP session.
const DefaultTimeout = 30 * time.Second

// Message describes one report delivery.
type Message struct {
	From       string // sender address; also the login when no username is configured
	Password   string // password or app token; falls back to the configured one
	To         string
	Subject    string
	ReportPath string
}

// DialFunc opens the TLS connection to the relay.
type DialFunc func(ctx context.Context, addr string, cfg *tls.Config) (net.Conn, error)

// Sender sends reports through a single relay. It is safe for concurrent use.
type Sender struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
	tlsCfg   *tls.Config
	dial     DialFunc
	log      zerolog.Logger
}

// Option configures a Sender.
type Option func(*Sender)

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Sender) { s.log = l }
}

// WithTLSConfig replaces the TLS client configuration.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *Sender) { s.tlsCfg = cfg }
}

// WithDialer replaces the connection dialer.
func WithDialer(d DialFunc) Option {
	return func(s *Sender) { s.dial = d }
}

// New creates a Sender for the relay described by cfg.
func New(cfg config.SMTPConfig, opts ...Option) *Sender {
	s := &Sender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  cfg.Timeout,
		tlsCfg: &tls.Config{
			ServerName:         cfg.Host,
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for test relays
			MinVersion:         tls.VersionTLS12,
		},
		log: zerolog.Nop(),
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	s.dial = s.dialTLS
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sender) dialTLS(ctx context.Context, addr string, cfg *tls.Config) (net.Conn, error) {
	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: s.timeout},
		Config:    cfg,
	}
	return d.DialContext(ctx, "tcp", addr)
}

// Send reads the report at msg.ReportPath and delivers it as the HTML body
// of one email. The report file is only read, never modified.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	body, err := os.ReadFile(msg.ReportPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileRead, err)
	}
	for _, a := range []string{msg.From, msg.To} {
		if _, err := mail.ParseAddress(a); err != nil {
			return fmt.Errorf("mailer: invalid address %q: %w", a, err)
		}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", string(body))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	logger := s.log.With().Str("relay", addr).Str("to", msg.To).Logger()

	conn, err := s.dial(ctx, addr, s.tlsCfg)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", ErrTransport, addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("%w: greeting: %w", ErrTransport, err)
	}
	defer c.Close()

	if err := s.authenticate(c, msg); err != nil {
		return err
	}

	// gomail flattens errors from the send callback, so keep the typed one.
	var sendErr error
	err = gomail.Send(gomail.SendFunc(func(from string, to []string, w io.WriterTo) error {
		sendErr = deliver(c, from, to, w)
		return sendErr
	}), m)
	if err != nil {
		if sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}

	if err := c.Quit(); err != nil {
		// The relay already accepted the DATA; a failed QUIT does not undo that.
		logger.Debug().Err(err).Msg("quit after delivery")
	}
	logger.Info().Str("report", msg.ReportPath).Int("bytes", len(body)).Msg("report sent")
	return nil
}

func (s *Sender) authenticate(c *smtp.Client, msg Message) error {
	user := s.username
	if user == "" {
		user = msg.From
	}
	pass := msg.Password
	if pass == "" {
		pass = s.password
	}
	if err := c.Auth(smtp.PlainAuth("", user, pass, s.host)); err != nil {
		if isTransport(err) {
			return fmt.Errorf("%w: auth: %w", ErrTransport, err)
		}
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return nil
}

func deliver(c *smtp.Client, from string, to []string, msg io.WriterTo) error {
	if err := c.Mail(from); err != nil {
		return classify("MAIL FROM", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return classify("RCPT TO "+rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return classify("DATA", err)
	}
	if _, err := msg.WriteTo(w); err != nil {
		_ = w.Close()
		return fmt.Errorf("%w: writing message: %w", ErrTransport, err)
	}
	if err := w.Close(); err != nil {
		return classify("end of DATA", err)
	}
	return nil
}

// classify maps an SMTP client error to ErrRejected when the server replied
// with a status code, and to ErrTransport otherwise.
func classify(stage string, err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return fmt.Errorf("%w: %s: %w", ErrRejected, stage, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, stage, err)
}

func isTransport(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
}
