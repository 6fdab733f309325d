package events_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rxtech-lab/trading-simulator/internal/events"
	"github.com/rxtech-lab/trading-simulator/mocks"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type EventsTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller
}

func TestEventsSuite(t *testing.T) {
	suite.Run(t, new(EventsTestSuite))
}

func (suite *EventsTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
}

func (suite *EventsTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *EventsTestSuite) TestNewEvent() {
	event := events.NewEvent(events.EventSimulationStarted, "sim-1", map[string]string{"symbol": "BTC/KRW"})

	suite.NotEmpty(event.ID)
	suite.Equal(events.EventSimulationStarted, event.Type)
	suite.Equal("sim-1", event.SimulationID)
	suite.WithinDuration(time.Now(), event.Timestamp, time.Second)
}

func (suite *EventsTestSuite) TestMultiPublisherFansOut() {
	first := mocks.NewMockPublisher(suite.ctrl)
	second := mocks.NewMockPublisher(suite.ctrl)
	event := events.NewEvent(events.EventSimulationTrade, "sim-1", nil)

	first.EXPECT().Publish(gomock.Any(), event).Return(nil)
	second.EXPECT().Publish(gomock.Any(), event).Return(nil)

	multi := events.NewMultiPublisher(first, nil, second)
	suite.NoError(multi.Publish(context.Background(), event))
}

func (suite *EventsTestSuite) TestMultiPublisherJoinsErrors() {
	first := mocks.NewMockPublisher(suite.ctrl)
	second := mocks.NewMockPublisher(suite.ctrl)
	failure := stderrors.New("broker down")

	first.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(failure)
	second.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	multi := events.NewMultiPublisher(first)
	multi.Add(second)

	err := multi.Publish(context.Background(), events.NewEvent(events.EventSimulationStopped, "sim-1", nil))
	suite.Error(err)
	suite.ErrorIs(err, failure)
}

func (suite *EventsTestSuite) TestMultiPublisherClosesInReverseOrder() {
	first := mocks.NewMockPublisher(suite.ctrl)
	second := mocks.NewMockPublisher(suite.ctrl)

	gomock.InOrder(
		second.EXPECT().Close().Return(nil),
		first.EXPECT().Close().Return(nil),
	)

	suite.NoError(events.NewMultiPublisher(first, second).Close())
}

func (suite *EventsTestSuite) TestNoopPublisher() {
	var p events.Publisher = events.NoopPublisher{}

	suite.NoError(p.Publish(context.Background(), events.Event{}))
	suite.NoError(p.Close())
}

func (suite *EventsTestSuite) TestRabbitMQPublisherDeclaresTopicExchange() {
	ch := mocks.NewMockAMQPChannel(suite.ctrl)
	ch.EXPECT().ExchangeDeclare("sim.events", amqp.ExchangeTopic, true, false, false, false, gomock.Nil()).Return(nil)

	_, err := events.NewRabbitMQPublisherWithChannel(ch, "sim.events", nil)
	suite.NoError(err)
}

func (suite *EventsTestSuite) TestRabbitMQPublisherDefaultExchange() {
	ch := mocks.NewMockAMQPChannel(suite.ctrl)
	ch.EXPECT().ExchangeDeclare(events.DefaultExchange, amqp.ExchangeTopic, true, false, false, false, gomock.Nil()).Return(nil)

	_, err := events.NewRabbitMQPublisherWithChannel(ch, "", nil)
	suite.NoError(err)
}

func (suite *EventsTestSuite) TestRabbitMQPublisherRoutesByType() {
	ch := mocks.NewMockAMQPChannel(suite.ctrl)
	ch.EXPECT().ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	event := events.NewEvent(events.EventSimulationCompleted, "sim-1", nil)

	ch.EXPECT().
		PublishWithContext(gomock.Any(), events.DefaultExchange, "simulation.completed", false, false, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
			suite.Equal("application/json", msg.ContentType)
			suite.Equal(event.ID, msg.MessageId)
			suite.Contains(string(msg.Body), `"simulation_id":"sim-1"`)

			return nil
		})

	p, err := events.NewRabbitMQPublisherWithChannel(ch, "", nil)
	suite.Require().NoError(err)
	suite.NoError(p.Publish(context.Background(), event))
}

func (suite *EventsTestSuite) TestRabbitMQPublisherWrapsFailures() {
	ch := mocks.NewMockAMQPChannel(suite.ctrl)
	ch.EXPECT().ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	ch.EXPECT().PublishWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(stderrors.New("channel closed"))
	ch.EXPECT().Close().Return(nil)

	p, err := events.NewRabbitMQPublisherWithChannel(ch, "", nil)
	suite.Require().NoError(err)

	err = p.Publish(context.Background(), events.NewEvent(events.EventSimulationTrade, "sim-1", nil))
	suite.Equal(errors.ErrCodePublishFailed, errors.GetCode(err))
	suite.NoError(p.Close())
}

func (suite *EventsTestSuite) TestRabbitMQPublisherDeclareFailure() {
	ch := mocks.NewMockAMQPChannel(suite.ctrl)
	ch.EXPECT().ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(stderrors.New("access refused"))

	_, err := events.NewRabbitMQPublisherWithChannel(ch, "", nil)
	suite.Equal(errors.ErrCodePublishFailed, errors.GetCode(err))
}
