package packet

import "github.com/axmq/mqttengine/wire"

// ValidateTopicName validates an MQTT topic name (used by PUBLISH): valid
// MQTT UTF-8, no wildcard characters. A zero-length topic name is legal at
// this layer, since MQTT 5.0 allows it on a PUBLISH that carries a Topic
// Alias; that higher-level rule is enforced by the Publish builder, not here.
func ValidateTopicName(topic string) error {
	if err := wire.ValidateUTF8([]byte(topic)); err != nil {
		return err
	}
	for i := 0; i < len(topic); i++ {
		if topic[i] == '+' || topic[i] == '#' {
			return ErrInvalidTopicName
		}
	}
	return nil
}

// ValidateTopicFilter validates an MQTT topic filter (used by SUBSCRIBE /
// UNSUBSCRIBE): valid MQTT UTF-8, non-empty, and wildcard characters '+'
// and '#' only where the spec's level rules allow them.
func ValidateTopicFilter(filter string) error {
	if len(filter) == 0 {
		return ErrInvalidTopicFilter
	}
	if err := wire.ValidateUTF8([]byte(filter)); err != nil {
		return err
	}

	levels := splitLevels(filter)
	for i, level := range levels {
		if level == "" {
			continue
		}
		if containsByte(level, '#') {
			if level != "#" || i != len(levels)-1 {
				return ErrInvalidTopicFilter
			}
		}
		if containsByte(level, '+') && level != "+" {
			return ErrInvalidTopicFilter
		}
	}
	return nil
}

func splitLevels(s string) []string {
	var levels []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			levels = append(levels, s[start:i])
			start = i + 1
		}
	}
	levels = append(levels, s[start:])
	return levels
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}
