package email

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	raw, err := buildMessage(&mail.Address{Name: "Kill Bill", Address: "billing@example.com"}, []string{"a@example.com", "b@example.com"},
		"Subscription Expired", "plain body", "<p>html body</p>")
	require.NoError(t, err)

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	assert.Equal(t, "Subscription Expired", msg.Header.Get("Subject"))
	assert.Equal(t, "a@example.com, b@example.com", msg.Header.Get("To"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var bodies []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(part)
		require.NoError(t, err)
		bodies = append(bodies, string(b))
	}
	assert.Equal(t, []string{"plain body", "<p>html body</p>"}, bodies)
}

func TestBuildMessage_EncodesNonASCIIHeaders(t *testing.T) {
	raw, err := buildMessage(&mail.Address{Name: "Société Générale", Address: "billing@example.com"}, []string{"a@example.com"},
		"Renouvellement — Café Ünal", "plain body", "")
	require.NoError(t, err)

	header, _, _ := strings.Cut(string(raw), "\r\n\r\n")
	for _, r := range header {
		require.Less(t, r, rune(128), "header must be 7-bit")
	}

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Renouvellement — Café Ünal", subject)

	from, err := msg.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "Société Générale", from[0].Name)
	assert.Equal(t, "billing@example.com", from[0].Address)
}

func TestSend_RequiresConfiguration(t *testing.T) {
	s := NewEmailSender("", "465", "", "", "", "Kill Bill", true)
	assert.Error(t, s.Send(context.Background(), []string{"a@example.com"}, "s", "t", ""))

	s = NewEmailSender("smtp.example.com", "465", "u", "p", "", "Kill Bill", true)
	assert.Error(t, s.Send(context.Background(), nil, "s", "t", ""))
	assert.Equal(t, "u", s.from)
}
