package display

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/events"
)

// Publisher pushes display commands and sequencer state changes to player
// devices over MQTT. Each screen listens on its own topic pair:
// screens/<id>/display and screens/<id>/state.
type Publisher struct {
	client mqtt.Client
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// NewPublisher connects to the broker. Player clients reconnect on their own;
// the paho client handles our side.
func NewPublisher(brokerURL, clientID string) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &Publisher{client: client}, nil
}

type displayCommand struct {
	ContentItemID int `json:"content_item_id"`
	Seconds       int `json:"seconds"`
}

// Display sends the render command for one screen.
func (p *Publisher) Display(screenID, contentItemID, seconds int) error {
	payload, err := json.Marshal(displayCommand{ContentItemID: contentItemID, Seconds: seconds})
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("screens/%d/display", screenID)
	token := p.client.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish display command for screen %d: %w", screenID, token.Error())
	}
	return nil
}

// PublishState pushes a sequencer state change for observability.
func (p *Publisher) PublishState(screenID int, state string) error {
	payload, err := json.Marshal(map[string]string{"state": state})
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("screens/%d/state", screenID)
	token := p.client.Publish(topic, 0, true, payload)
	token.Wait()
	return token.Error()
}

// ForwardStates relays sequencer state events from the in-process bus onto
// MQTT until the context is cancelled.
func (p *Publisher) ForwardStates(ctx context.Context, bus *events.Bus) {
	sub := bus.Subscribe(events.EventSequencerState)
	defer bus.Unsubscribe(events.EventSequencerState, sub)
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-sub:
			if !ok {
				return
			}
			screenID, _ := payload["screen_id"].(int)
			state, _ := payload["state"].(string)
			if err := p.PublishState(screenID, state); err != nil {
				log.Warn().Err(err).Int("screen_id", screenID).Msg("failed to publish state change")
			}
		}
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// Nop is a Publisher stand-in for deployments without a broker; commands are
// logged and dropped.
type Nop struct{}

func (Nop) Display(screenID, contentItemID, seconds int) error {
	log.Debug().
		Int("screen_id", screenID).
		Int("content_item_id", contentItemID).
		Int("seconds", seconds).
		Msg("display command dropped (no broker configured)")
	return nil
}
