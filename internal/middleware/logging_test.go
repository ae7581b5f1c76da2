package middleware

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	tele "gopkg.in/telebot.v3"
)

// fakeContext implements the part of tele.Context the middleware touches
type fakeContext struct {
	tele.Context
	sender   *tele.User
	message  *tele.Message
	callback *tele.Callback
	sent     []interface{}
}

func (c *fakeContext) Sender() *tele.User { return c.sender }
func (c *fakeContext) Message() *tele.Message { return c.message }
func (c *fakeContext) Callback() *tele.Callback { return c.callback }
func (c *fakeContext) Send(what interface{}, opts ...interface{}) error {
	c.sent = append(c.sent, what)
	return nil
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name    string
		ctx     *fakeContext
		err     error
		kind    string
		message string
	}{
		{
			name:    "command",
			ctx:     &fakeContext{sender: &tele.User{ID: 1}, message: &tele.Message{Text: "/start"}},
			kind:    "command",
			message: "Update handled",
		},
		{
			name:    "text message",
			ctx:     &fakeContext{sender: &tele.User{ID: 1}, message: &tele.Message{Text: "gato"}},
			kind:    "message",
			message: "Update handled",
		},
		{
			name:    "failed callback",
			ctx:     &fakeContext{sender: &tele.User{ID: 1}, callback: &tele.Callback{Unique: "cancel"}},
			err:     fmt.Errorf("edit failed"),
			kind:    "callback",
			message: "Update handling failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedLogger()
			handler := Logging(logger)(func(tele.Context) error { return tt.err })

			err := handler(tt.ctx)

			assert.Equal(t, tt.err, err)
			entries := logs.All()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, tt.message, entries[0].Message)
				assert.Equal(t, tt.kind, entries[0].ContextMap()["kind"])
				assert.Equal(t, int64(1), entries[0].ContextMap()["user_id"])
			}
		})
	}
}

func TestRecover(t *testing.T) {
	logger, logs := newObservedLogger()
	ctx := &fakeContext{sender: &tele.User{ID: 42}}
	handler := Recover(logger)(func(tele.Context) error { panic("boom") })

	err := handler(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []interface{}{"Произошла ошибка. Попробуйте позже."}, ctx.sent)
	assert.Equal(t, 1, logs.FilterMessage("Panic in handler").Len())
}

func TestRecover_NoPanic(t *testing.T) {
	logger, logs := newObservedLogger()
	ctx := &fakeContext{sender: &tele.User{ID: 42}}
	handler := Recover(logger)(func(tele.Context) error { return nil })

	assert.NoError(t, handler(ctx))
	assert.Empty(t, ctx.sent)
	assert.Zero(t, logs.Len())
}
