package soap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Value is the loosely-typed decoding of a SOAP response body. Leaf elements
// decode to string, elements with children to map[string]Value, and repeated
// sibling elements to []Value. A single occurrence of a repeatable element is
// indistinguishable from a scalar at this layer; callers that expect lists
// must be prepared to wrap a lone map themselves.
type Value = any

// Params is an ordered list of request fields. Order matters: the upstream
// servlets validate elements against their WSDL sequence.
type Params []Param

// Param is one named request field. Supported values are string, int, []int
// (encoded as repeated <item> children) and nested Params.
type Param struct {
	Name  string
	Value any
}

func (p Params) appendXML(b *strings.Builder) error {
	for _, param := range p {
		b.WriteString("<")
		b.WriteString(param.Name)
		b.WriteString(">")
		if err := appendValue(b, param.Value); err != nil {
			return err
		}
		b.WriteString("</")
		b.WriteString(param.Name)
		b.WriteString(">")
	}
	return nil
}

func appendValue(b *strings.Builder, value any) error {
	switch v := value.(type) {
	case string:
		return xml.EscapeText(b, []byte(v))
	case int:
		b.WriteString(strconv.Itoa(v))
		return nil
	case []int:
		for _, item := range v {
			b.WriteString("<item>")
			b.WriteString(strconv.Itoa(item))
			b.WriteString("</item>")
		}
		return nil
	case Params:
		return v.appendXML(b)
	default:
		return fmt.Errorf("unsupported parameter type %T", value)
	}
}

// decodeBody walks a response envelope and returns the generic decoding of
// the operation response element, or the Fault carried in the body.
func decodeBody(r io.Reader) (Value, error) {
	decoder := xml.NewDecoder(r)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: no Body element", errMalformedResponse)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformedResponse, err)
		}
		if start, ok := token.(xml.StartElement); ok && start.Name.Local == "Body" {
			return decodeBodyContent(decoder)
		}
	}
}

func decodeBodyContent(decoder *xml.Decoder) (Value, error) {
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformedResponse, err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "Fault" {
				return nil, decodeFault(decoder, t)
			}
			value, err := decodeElement(decoder, t)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errMalformedResponse, err)
			}
			return value, nil
		case xml.EndElement:
			// Empty body: nothing came back.
			return nil, nil
		}
	}
}

func decodeFault(decoder *xml.Decoder, start xml.StartElement) error {
	var body struct {
		Code   string `xml:"faultcode"`
		Reason string `xml:"faultstring"`
	}
	if err := decoder.DecodeElement(&body, &start); err != nil {
		return fmt.Errorf("%w: undecodable fault: %v", errMalformedResponse, err)
	}
	return &Fault{Code: body.Code, Reason: strings.TrimSpace(body.Reason)}
}

// decodeElement turns one element and its subtree into a generic Value.
func decodeElement(decoder *xml.Decoder, start xml.StartElement) (Value, error) {
	var text strings.Builder
	var children map[string]Value

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			child, err := decodeElement(decoder, t)
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = map[string]Value{}
			}
			name := t.Name.Local
			if existing, ok := children[name]; ok {
				if list, ok := existing.([]Value); ok {
					children[name] = append(list, child)
				} else {
					children[name] = []Value{existing, child}
				}
			} else {
				children[name] = child
			}
		case xml.EndElement:
			if children != nil {
				return children, nil
			}
			return strings.TrimSpace(text.String()), nil
		}
	}
}
