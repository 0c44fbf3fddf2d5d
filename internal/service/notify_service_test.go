package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jrreynao/widgetamericanrent/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeTwilio struct {
	params []*openapi.CreateMessageParams
	err    error
}

func (f *fakeTwilio) CreateMessage(p *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.params = append(f.params, p)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func TestNotifyBusiness(t *testing.T) {
	api := &fakeTwilio{}
	n := newWhatsAppNotifier(api, "+14155238886", "5491126584086")

	require.NoError(t, n.NotifyBusiness(context.Background(), "Orden: 1"))
	require.Len(t, api.params, 1)
	assert.Equal(t, "whatsapp:+5491126584086", *api.params[0].To)
	assert.Equal(t, "whatsapp:+14155238886", *api.params[0].From)
	assert.Equal(t, "Orden: 1", *api.params[0].Body)
}

func TestNotifyBusinessTruncatesLongBodies(t *testing.T) {
	api := &fakeTwilio{}
	n := newWhatsAppNotifier(api, "whatsapp:+1", "2")

	require.NoError(t, n.NotifyBusiness(context.Background(), strings.Repeat("ñ", 2000)))
	assert.Equal(t, whatsAppMaxBody, len([]rune(*api.params[0].Body)))
}

func TestNotifyBusinessError(t *testing.T) {
	n := newWhatsAppNotifier(&fakeTwilio{err: errors.New("boom")}, "1", "2")
	assert.ErrorContains(t, n.NotifyBusiness(context.Background(), "x"), "boom")
}

func TestNewWhatsAppNotifierDisabled(t *testing.T) {
	assert.Nil(t, NewWhatsAppNotifier(&config.Config{BusinessWhatsApp: "549"}))
	assert.NotNil(t, NewWhatsAppNotifier(&config.Config{
		TwilioAccountSID: "AC1", TwilioAuthToken: "t", TwilioWhatsAppFrom: "+1", BusinessWhatsApp: "549",
	}))
}
