package yml

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	Node yaml.Node
)

// Root unwraps a document node so that callers always operate on the
// top-level value node.
func Root(n *yaml.Node) *Node {
	if n != nil && n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return (*Node)(n.Content[0])
	}
	return (*Node)(n)
}

// Lookup returns the value node associated with the supplied mapping key or
// nil when the key is absent. Matching is case-insensitive.
func (n *Node) Lookup(name string) *Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if strings.EqualFold(n.Content[i].Value, name) {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

// Items iterates sequence elements.
func (n *Node) Items(callback func(index int, node *Node) error) error {
	for i := 0; i < len(n.Content); i++ {
		if err := callback(i, (*Node)(n.Content[i])); err != nil {
			return err
		}
	}
	return nil
}

// Pairs iterates mapping key/value pairs.
func (n *Node) Pairs(callback func(key string, node *Node) error) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if err := callback(key, (*Node)(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

// Interface converts the node into a plain Go value.
func (n *Node) Interface() interface{} {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!str":
			return n.Value
		case "!!bool":
			return parseBool(n.Value)
		case "!!null":
			return nil
		case "!!float":
			return parseFloat(n.Value)
		case "!!int":
			return parseInt(n.Value)
		default:
			return n.Value
		}
	case yaml.MappingNode:
		var aMap = make(map[string]interface{})
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			value := (*Node)(n.Content[i+1])
			aMap[key] = value.Interface()
		}
		return aMap
	case yaml.SequenceNode:
		var aSlice = make([]interface{}, 0)
		for i := 0; i < len(n.Content); i++ {
			value := (*Node)(n.Content[i])
			aSlice = append(aSlice, value.Interface())
		}
		return aSlice
	}
	return nil
}

// Text returns the scalar value or empty string for non scalar nodes.
func (n *Node) Text() string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// Bool coerces the node into a boolean; ok is false when the node is not a
// boolean scalar.
func (n *Node) Bool() (bool, bool) {
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag != "!!bool" {
		return false, false
	}
	return parseBool(n.Value), true
}

// Int coerces the node into an int; ok is false when the node is not an
// integer scalar.
func (n *Node) Int() (int, bool) {
	if n == nil || n.Kind != yaml.ScalarNode {
		return 0, false
	}
	switch n.Tag {
	case "!!int":
		return parseInt(n.Value), true
	case "!!float":
		return int(parseFloat(n.Value)), true
	}
	return 0, false
}

// Strings coerces a sequence node into a string slice, stringifying scalar
// elements.
func (n *Node) Strings() []string {
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	var result []string
	for i := 0; i < len(n.Content); i++ {
		result = append(result, n.Content[i].Value)
	}
	return result
}

// StringMap coerces a mapping node into a map[string]string.
func (n *Node) StringMap() map[string]string {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	result := make(map[string]string)
	for i := 0; i+1 < len(n.Content); i += 2 {
		result[n.Content[i].Value] = n.Content[i+1].Value
	}
	return result
}

// parseBool converts a value to a boolean.
func parseBool(value string) bool {
	return strings.ToLower(value) == "true"
}

// parseFloat converts a value to a float64.
func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0.0
	}
	return f
}

// parseInt converts a value to an int.
func parseInt(value string) int {
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return i
}
