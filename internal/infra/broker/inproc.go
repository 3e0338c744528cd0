package broker

import (
	"context"
	"fmt"
)

// InProcPublisher доставляет событие обработчику в том же процессе.
// Используется, когда брокер не настроен.
type InProcPublisher struct {
	handler Handler
}

func NewInProcPublisher(handler Handler) *InProcPublisher {
	return &InProcPublisher{handler: handler}
}

func (p *InProcPublisher) Publish(ctx context.Context, msg Message) error {
	if err := p.handler(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPublish, msg.EventID, err)
	}
	return nil
}

func (p *InProcPublisher) Close() error {
	return nil
}
