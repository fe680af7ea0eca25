package topicmgr

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Manager is the central registry of bus topics. Modules register their
// topics at definition time so the set of channels flowing through the
// pipeline is discoverable at runtime.
type Manager struct {
	mu     sync.RWMutex
	topics map[string]Topic
}

// NewManager creates an empty topic manager.
func NewManager() *Manager {
	return &Manager{
		topics: make(map[string]Topic),
	}
}

var (
	defaultOnce    sync.Once
	defaultManager *Manager
)

// Default returns the process-wide topic manager.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}

// DefineFramework creates a new typed topic for framework services.
func DefineFramework(config TopicConfig) Topic {
	config.Scope = ScopeFramework
	config.Module = ""
	return define(config)
}

// DefineModule creates a new typed topic owned by a module.
func DefineModule(config TopicConfig) Topic {
	config.Scope = ScopeModule
	return define(config)
}

func define(config TopicConfig) Topic {
	return &TypedTopic{
		name:        config.Name,
		module:      config.Module,
		description: config.Description,
		metadata:    config.Metadata,
		scope:       config.Scope,
	}
}

// Topic names are dotted lowercase segments, e.g. "feed.chat.new".
var topicNamePattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)+$`)

// Register adds a topic to the registry after validating its definition.
func (m *Manager) Register(topic Topic) error {
	if err := validate(topic); err != nil {
		return &TopicError{
			Type:    ErrorValidationFailed,
			Topic:   topic.Name(),
			Module:  topic.Module(),
			Message: "topic validation failed",
			Cause:   err,
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.topics[topic.Name()]; exists {
		return &TopicError{
			Type:    ErrorDuplicateRegistration,
			Topic:   topic.Name(),
			Module:  topic.Module(),
			Message: fmt.Sprintf("topic %q is already registered", topic.Name()),
		}
	}

	m.topics[topic.Name()] = topic
	return nil
}

// MustRegister registers a topic and panics on failure. Topics are defined
// at package init time, where a bad definition should stop startup.
func (m *Manager) MustRegister(topic Topic) Topic {
	if err := m.Register(topic); err != nil {
		panic(err)
	}
	return topic
}

// Get retrieves a topic by name.
func (m *Manager) Get(name string) (Topic, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.topics[name]
	return t, ok
}

// List returns all registered topics sorted by name.
func (m *Manager) List() []Topic {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Topic, 0, len(m.topics))
	for _, t := range m.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ListModule returns the topics owned by the given module, sorted by name.
func (m *Manager) ListModule(module string) []Topic {
	var out []Topic
	for _, t := range m.List() {
		if t.Module() == module {
			out = append(out, t)
		}
	}
	return out
}

func validate(topic Topic) error {
	name := topic.Name()
	if name == "" {
		return fmt.Errorf("topic name is empty")
	}
	if !topicNamePattern.MatchString(name) {
		return fmt.Errorf("topic name %q must be dotted lowercase segments", name)
	}
	switch topic.Scope() {
	case ScopeFramework:
		if topic.Module() != "" {
			return fmt.Errorf("framework topic %q must not declare a module", name)
		}
	case ScopeModule:
		if topic.Module() == "" {
			return fmt.Errorf("module topic %q must declare a module", name)
		}
		if !strings.HasPrefix(name, topic.Module()+".") {
			return fmt.Errorf("module topic %q must be prefixed with its module %q", name, topic.Module())
		}
	default:
		return fmt.Errorf("topic %q has unknown scope %q", name, topic.Scope())
	}
	return nil
}
