package discord

import (
	"fmt"
	"strings"
)

const (
	// customIDSeparator is the character used to separate parts
	customIDSeparator = ":"

	// maxCustomIDLength is Discord's limit for custom IDs
	maxCustomIDLength = 100
)

// CustomID is a parsed component custom ID. The wire form is
// domain:action:target[:args...], e.g. "explore:move:island:D4".
type CustomID struct {
	Domain string
	Action string
	Target string
	Args   []string
}

// Encode renders the custom ID wire form
func (c *CustomID) Encode() (string, error) {
	if c.Domain == "" || c.Action == "" {
		return "", fmt.Errorf("custom ID requires domain and action")
	}
	parts := []string{c.Domain, c.Action}
	if c.Target != "" {
		parts = append(parts, c.Target)
	}
	parts = append(parts, c.Args...)

	for _, part := range parts {
		if strings.Contains(part, customIDSeparator) {
			return "", fmt.Errorf("custom ID part %q contains separator", part)
		}
	}

	result := strings.Join(parts, customIDSeparator)
	if len(result) > maxCustomIDLength {
		return "", fmt.Errorf("custom ID exceeds maximum length of %d characters", maxCustomIDLength)
	}
	return result, nil
}

// MustEncode is like Encode but panics on error
func (c *CustomID) MustEncode() string {
	result, err := c.Encode()
	if err != nil {
		panic(err)
	}
	return result
}

// ParseCustomID parses the wire form back into its parts
func ParseCustomID(customID string) (*CustomID, error) {
	if customID == "" {
		return nil, fmt.Errorf("empty custom ID")
	}

	parts := strings.Split(customID, customIDSeparator)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid custom ID format: expected at least domain:action")
	}

	result := &CustomID{Domain: parts[0], Action: parts[1]}
	if len(parts) > 2 {
		result.Target = parts[2]
		result.Args = parts[3:]
	}
	return result, nil
}
