package world

import (
	"context"
	"errors"
)

type eventsReq struct {
	Since uint64
	Limit int
	Resp  chan eventsResp
}

type eventsResp struct {
	Items []Event
	Next  uint64
}

// RequestEventsAfter fetches events through the world loop, safe to call
// from any goroutine. The loop answers between ticks; callers poll.
func (w *World) RequestEventsAfter(ctx context.Context, since uint64, limit int) ([]Event, uint64, error) {
	if w == nil || w.eventsReq == nil {
		return nil, since, errors.New("event query not available")
	}
	req := eventsReq{
		Since: since,
		Limit: limit,
		Resp:  make(chan eventsResp, 1),
	}
	select {
	case w.eventsReq <- req:
	case <-ctx.Done():
		return nil, since, ctx.Err()
	}
	select {
	case resp := <-req.Resp:
		return resp.Items, resp.Next, nil
	case <-ctx.Done():
		return nil, since, ctx.Err()
	}
}

func (w *World) handleEventsReq(req eventsReq) {
	items, next := w.events.after(req.Since, req.Limit)
	select {
	case req.Resp <- eventsResp{Items: items, Next: next}:
	default:
	}
}
