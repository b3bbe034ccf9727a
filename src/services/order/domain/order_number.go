package domain

import (
	"strconv"
	"sync/atomic"
	"time"
)

const orderNumberPrefix = "ORD-"

type OrderNumberGenerator interface {
	Next() string
}

// clockNumbers issues ORD-<unix millis>. Two calls within the same
// millisecond get consecutive values, so numbers never repeat in-process.
type clockNumbers struct {
	last atomic.Int64
	now  func() time.Time
}

func NewOrderNumberGenerator() OrderNumberGenerator {
	return NewOrderNumberGeneratorWithClock(time.Now)
}

func NewOrderNumberGeneratorWithClock(now func() time.Time) OrderNumberGenerator {
	return &clockNumbers{now: now}
}

func (g *clockNumbers) Next() string {
	for {
		prev := g.last.Load()
		next := g.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if g.last.CompareAndSwap(prev, next) {
			return orderNumberPrefix + strconv.FormatInt(next, 10)
		}
	}
}
