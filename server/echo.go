package server

import (
	"context"
	"errors"

	"mini-feign/message"
)

// Echo is the demo service: it returns the request with the byte length of the
// text as the server received it.
type Echo struct{}

func (e *Echo) Say(ctx context.Context, args *message.Request, reply *message.Reply) error {
	if args.ID < 0 {
		return errors.New("id must not be negative")
	}
	reply.ID = args.ID
	reply.Msg = args.Msg
	reply.Length = int64(len(args.Msg))
	return nil
}
