package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// NormalizeXML converts an XML document into the nested-object
// representation the path resolver operates on:
//
//   - attributes become keys prefixed with "@"
//   - a leaf element without attributes becomes its trimmed text
//   - a leaf element with attributes becomes {"@attr": ..., "#text": ...}
//   - repeated child tags accumulate into an array in encounter order;
//     a single occurrence stays a scalar/object
//
// The returned map has a single key, the root element's local name.
func NormalizeXML(data []byte) (map[string]any, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Strict = false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("no root element found")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}
		if start, ok := token.(xml.StartElement); ok {
			value, err := normalizeElement(decoder, start)
			if err != nil {
				return nil, err
			}
			return map[string]any{start.Name.Local: value}, nil
		}
	}
}

func normalizeElement(decoder *xml.Decoder, start xml.StartElement) (any, error) {
	node := make(map[string]any)
	for _, attr := range start.Attr {
		node["@"+attr.Name.Local] = attr.Value
	}

	var text strings.Builder
	childCount := 0

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			child, err := normalizeElement(decoder, t)
			if err != nil {
				return nil, err
			}
			addChild(node, t.Name.Local, child)
			childCount++
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			content := strings.TrimSpace(text.String())
			if childCount == 0 {
				if len(node) == 0 {
					// Leaf without attributes: bare string.
					return content, nil
				}
				if content != "" {
					node["#text"] = content
				}
				return node, nil
			}
			if content != "" {
				node["#text"] = content
			}
			return node, nil
		}
	}
}

// addChild stores a child value, promoting to an array on the second
// occurrence of the same tag name.
func addChild(node map[string]any, name string, value any) {
	existing, ok := node[name]
	if !ok {
		node[name] = value
		return
	}
	if list, ok := existing.([]any); ok {
		node[name] = append(list, value)
		return
	}
	node[name] = []any{existing, value}
}
