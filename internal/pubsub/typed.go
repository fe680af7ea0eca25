package pubsub

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/rolznz/zap.stream/internal/topicmgr"
)

// Event[T] wraps a topic name and provides type-safe publishing.
// Defining an event auto-registers its topic with the default manager.
type Event[T any] struct {
	topicName string
	config    topicmgr.TopicConfig
}

// NewEvent creates a typed event and registers it with the default topic
// manager. The payload type's json tags are reflected into the topic
// metadata for runtime discovery.
func NewEvent[T any](name string, description string) Event[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	fields := make([]string, 0)
	typeName := ""
	if t != nil && t.Kind() == reflect.Struct {
		typeName = t.Name()
		for i := 0; i < t.NumField(); i++ {
			jsonTag := t.Field(i).Tag.Get("json")
			if jsonTag == "" || jsonTag == "-" {
				continue
			}
			fieldName, _, _ := strings.Cut(jsonTag, ",")
			fields = append(fields, fieldName)
		}
	}

	// The first segment of the topic names the owning module,
	// e.g. "feed.chat.new" belongs to "feed".
	module, _, _ := strings.Cut(name, ".")

	config := topicmgr.TopicConfig{
		Name:        name,
		Module:      module,
		Description: description,
		Metadata: map[string]interface{}{
			"payload_fields": fields,
			"type_name":      typeName,
			"is_typed":       true,
		},
	}

	// Events are defined at package level; a bad definition should stop
	// startup, hence MustRegister.
	topicmgr.Default().MustRegister(topicmgr.DefineModule(config))

	return Event[T]{
		topicName: name,
		config:    config,
	}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Publish sends a typed event. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		Payload: data,
	})
}

// PublishFor is like Publish but stamps the stream address and author
// pubkey onto the bus message so middleware can see them without decoding
// the payload.
func PublishFor[T any](ctx context.Context, p Publisher, event Event[T], stream, pubkey string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		Stream:  stream,
		Pubkey:  pubkey,
		Payload: data,
	})
}

// Decode unmarshals a bus message into the event's payload type.
func Decode[T any](event Event[T], msg Message) (T, error) {
	var payload T
	err := json.Unmarshal(msg.Payload, &payload)
	return payload, err
}
