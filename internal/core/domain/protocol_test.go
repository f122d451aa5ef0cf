package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeInbound_Direct_Chat(t *testing.T) {
	req := require.New(t)

	in, err := DecodeInbound([]byte(`{"type":"chat","to":"bob","message":"hi"}`))

	req.NoError(err)
	req.Equal(TypeChat, in.Type)
	req.Equal("bob", in.To)
	req.Equal("hi", in.Message)
}

func TestDecodeInbound_Room_Message(t *testing.T) {
	req := require.New(t)

	in, err := DecodeInbound([]byte(`{"type":"message","content":"hello room"}`))

	req.NoError(err)
	req.Equal(TypeMessage, in.Type)
	req.Equal("hello room", in.Content)
}

func TestDecodeInbound_Rejects_Bad_Payloads(t *testing.T) {
	cases := map[string]string{
		"invalid json":        `{"type":`,
		"unknown type":        `{"type":"upload"}`,
		"missing type":        `{"to":"bob"}`,
		"chat without target": `{"type":"chat","message":"hi"}`,
		"chat without body":   `{"type":"chat","to":"bob"}`,
		"room without body":   `{"type":"message"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeInbound([]byte(raw))
			require.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}
