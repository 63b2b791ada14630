package xmpp

import (
	"crypto/tls"
	"errors"
	"strings"

	"github.com/mattn/go-xmpp"
	log "github.com/sirupsen/logrus"
)

var ErrMissingConfig = errors.New("missing xmpp config")

type (
	// Config of the contact route summaries are sent to.
	Config struct {
		Host     string
		Jid      string
		Password string
		To       string
	}

	Xmpp struct {
		Config Config
	}
)

// Enabled is true when the configuration is complete enough to send.
func (c Config) Enabled() bool {
	return len(c.Jid) > 0 && len(c.Password) > 0 && len(c.To) > 0
}

func serverName(jid string) string {
	parts := strings.SplitN(jid, "@", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.Split(parts[1], "/")[0]
}

// New checks the configuration and fills the host from the jid when it is
// missing.
func New(config Config) (*Xmpp, error) {
	if !config.Enabled() {
		return nil, ErrMissingConfig
	}
	if len(config.Host) == 0 {
		config.Host = serverName(config.Jid)
	}
	if len(config.Host) == 0 {
		return nil, errors.New("no xmpp host for jid " + config.Jid)
	}
	return &Xmpp{Config: config}, nil
}

func (x *Xmpp) options() xmpp.Options {
	return xmpp.Options{
		Host:          x.Config.Host,
		User:          x.Config.Jid,
		Password:      x.Config.Password,
		NoTLS:         true,
		StartTLS:      true,
		Debug:         false,
		Session:       false,
		Status:        "xa",
		StatusMessage: "Routing",
		TLSConfig:     &tls.Config{ServerName: strings.Split(x.Config.Host, ":")[0]},
	}
}

// Send opens a connection, sends message and closes.
func (x *Xmpp) Send(message string) error {
	if !x.Config.Enabled() {
		return ErrMissingConfig
	}

	logger := log.WithFields(log.Fields{"host": x.Config.Host, "to": x.Config.To})
	logger.Debug("Create xmpp client")
	talk, err := x.options().NewClient()
	if err != nil {
		logger.WithError(err).Error("Xmpp connection failed")
		return err
	}
	defer talk.Close()

	if _, err := talk.Send(xmpp.Chat{Remote: x.Config.To, Type: "chat", Text: message}); err != nil {
		logger.WithError(err).Error("Xmpp send failed")
		return err
	}
	logger.Debug("Message sent")
	return nil
}
