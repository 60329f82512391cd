package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	Queue of TNC2 lines from the RX task to the uplink.
 *
 * Description:	Strict FIFO.  The RX task must never wait on the
 *		network so adding is never blocking.  Normally there
 *		is no limit; radio packet rates are far below what any
 *		internet connection can take.  A limit can be set for
 *		the case where the server is unreachable for a long
 *		time, then the newest lines are dropped.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"sync"
)

type UplinkQueue struct {
	mu    sync.Mutex /* Critical section for updating queue. */
	items []string
	limit int // 0 for no limit.

	wake chan struct{} /* Notify uplink task when queue not empty. */
}

func NewUplinkQueue(limit int) *UplinkQueue {
	return &UplinkQueue{ //nolint:exhaustruct
		limit: limit,
		wake:  make(chan struct{}, 1),
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        Append
 *
 * Purpose:     Add a line to the end of the queue.
 *
 * Returns:	false if the queue is at its limit and the line was
 *		dropped.
 *
 * Description:	Wake up the uplink task if it is waiting.
 *
 *--------------------------------------------------------------------*/

func (q *UplinkQueue) Append(line string) bool {
	q.mu.Lock()
	if q.limit > 0 && len(q.items) >= q.limit {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, line)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	return true
}

// Remove takes the line at the head, if any.
func (q *UplinkQueue) Remove() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return "", false
	}

	var line = q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil // Let the backing array go.
	}
	return line, true
}

/*-------------------------------------------------------------------
 *
 * Name:        Wait
 *
 * Purpose:     Remove from the head, waiting while the queue is empty.
 *
 * Returns:	Line, or ctx.Err() if cancelled first.
 *
 *--------------------------------------------------------------------*/

func (q *UplinkQueue) Wait(ctx context.Context) (string, error) {
	for {
		if line, ok := q.Remove(); ok {
			return line, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-q.wake:
		}
	}
}

func (q *UplinkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
