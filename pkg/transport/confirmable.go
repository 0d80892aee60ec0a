package transport

import (
	"bytes"
	"context"

	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	udpMessage "github.com/plgd-dev/go-coap/v2/udp/message"
	"github.com/plgd-dev/go-coap/v2/udp/message/pool"
)

// confirmableConn is the part of a UDP client connection that can send a
// message with an explicit type. *client.ClientConn implements it.
type confirmableConn interface {
	AcquireMessage(ctx context.Context) *pool.Message
	ReleaseMessage(m *pool.Message)
	WriteMessage(req *pool.Message) error
}

// writeConfirmable sends n as a CON message and waits for the ACK or for
// retransmissions to run out.
func writeConfirmable(ctx context.Context, cc confirmableConn, n Notification, opts message.Options) error {
	req := cc.AcquireMessage(ctx)
	defer cc.ReleaseMessage(req)

	req.SetCode(codes.Content)
	req.SetToken(n.Token)
	req.ResetOptionsTo(opts)
	req.SetBody(bytes.NewReader(n.Payload))
	req.SetType(udpMessage.Confirmable)
	return cc.WriteMessage(req)
}
