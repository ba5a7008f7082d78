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
	// Config of the chat account used to report finished sessions
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

func serverName(jid string) string {
	parts := strings.SplitN(jid, "@", 2)
	if len(parts) < 2 {
		return jid
	}
	return strings.SplitN(parts[1], "/", 2)[0]
}

func (x Xmpp) Enabled() bool {
	return len(x.Config.Jid) > 0 && len(x.Config.Password) > 0 && len(x.Config.To) > 0
}

func (x Xmpp) options() xmpp.Options {
	host := x.Config.Host
	if len(host) == 0 {
		host = serverName(x.Config.Jid)
	}

	return xmpp.Options{
		Host:          host,
		User:          x.Config.Jid,
		Password:      x.Config.Password,
		NoTLS:         true,
		StartTLS:      true,
		TLSConfig:     &tls.Config{ServerName: serverName(x.Config.Jid)},
		Session:       false,
		Status:        "xa",
		StatusMessage: "racing",
	}
}

func (x Xmpp) Send(message string) error {
	if !x.Enabled() {
		return ErrMissingConfig
	}

	talk, err := x.options().NewClient()
	if err != nil {
		log.Errorf("Unable to connect to %s : %v", x.Config.Host, err)
		return err
	}
	defer talk.Close()

	log.Debugf("Send message to %s", x.Config.To)
	_, err = talk.Send(xmpp.Chat{Remote: x.Config.To, Type: "chat", Text: message})

	return err
}
