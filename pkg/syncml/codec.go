package syncml

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// MarshalXML encodes Body's commands in insertion order, followed by a
// bare <Final/> element when Final is set. encoding/xml cannot express an
// ordered union of element types via struct tags alone, so Body drives the
// encoder directly.
func (b Body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "SyncBody"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, cmd := range b.Commands {
		name := xml.Name{Local: cmd.Kind()}
		if err := e.EncodeElement(cmd, xml.StartElement{Name: name}); err != nil {
			return err
		}
	}
	if b.Final {
		final := xml.StartElement{Name: xml.Name{Local: "Final"}}
		if err := e.EncodeToken(final); err != nil {
			return err
		}
		if err := e.EncodeToken(final.End()); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML decodes SyncBody by dispatching each child element to its
// concrete command type based on tag name, preserving wire order.
func (b *Body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			cmd, err := decodeCommand(d, t)
			if err != nil {
				return err
			}
			if cmd != nil {
				b.Commands = append(b.Commands, cmd)
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
}

func decodeCommand(d *xml.Decoder, start xml.StartElement) (Command, error) {
	switch start.Name.Local {
	case "Get":
		var v Get
		if err := d.DecodeElement(&v, &start); err != nil {
			return nil, err
		}
		return v, nil
	case "Replace":
		var v Replace
		if err := d.DecodeElement(&v, &start); err != nil {
			return nil, err
		}
		return v, nil
	case "Exec":
		var v Exec
		if err := d.DecodeElement(&v, &start); err != nil {
			return nil, err
		}
		return v, nil
	case "Alert":
		var v Alert
		if err := d.DecodeElement(&v, &start); err != nil {
			return nil, err
		}
		return v, nil
	case "Status":
		var v Status
		if err := d.DecodeElement(&v, &start); err != nil {
			return nil, err
		}
		return v, nil
	case "Results":
		var v Results
		if err := d.DecodeElement(&v, &start); err != nil {
			return nil, err
		}
		return v, nil
	case "Final":
		if err := d.Skip(); err != nil {
			return nil, err
		}
		return finalMarker{}, nil
	default:
		if err := d.Skip(); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

// finalMarker lets decodeCommand report a <Final/> sighting through the
// same dispatch path without polluting the Command list callers see.
type finalMarker struct{}

func (finalMarker) Kind() string { return "Final" }

// Encode serializes msg as SyncML DM XML, suitable for transport by a
// caller-owned channel.
func Encode(msg *Message) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(msg); err != nil {
		return nil, fmt.Errorf("syncml: encode message: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses SyncML DM XML into a Message, splitting out any <Final/>
// marker into Body.Final.
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := xml.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("syncml: decode message: %w", err)
	}

	kept := msg.Body.Commands[:0]
	for _, cmd := range msg.Body.Commands {
		if cmd.Kind() == "Final" {
			msg.Body.Final = true
			continue
		}
		kept = append(kept, cmd)
	}
	msg.Body.Commands = kept
	return &msg, nil
}
