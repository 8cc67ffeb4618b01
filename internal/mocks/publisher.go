package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kost-service/internal/telemetry"
)

var _ telemetry.Publisher = (*PublisherMock)(nil)

// PublisherMock stands in for the AMQP publisher behind audit and domain events.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// RoutingKeys lists the routing keys published so far, in order.
func (m *PublisherMock) RoutingKeys() []string {
	var keys []string
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			keys = append(keys, call.Arguments.String(1))
		}
	}
	return keys
}
