package telegram

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fakeContext implements the parts of telebot.Context the handlers use.
type fakeContext struct {
	telebot.Context
	sender *telebot.User
	args   []string
	sent   []string
}

func (c *fakeContext) Sender() *telebot.User { return c.sender }
func (c *fakeContext) Args() []string        { return c.args }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what.(string))
	return nil
}

func (c *fakeContext) last() string {
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeClient struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (c *fakeClient) SendMessage(_ context.Context, chatID int64, text string, _ *telebot.SendOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, sentMessage{chatID: chatID, text: text})
	return nil
}
