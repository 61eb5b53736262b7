package gvl

import (
	"github.com/buger/jsonparser"
	"github.com/golang/glog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/prebid/gvl-validator/errortypes"
)

const invalidCookieSchema = "Invalid cookie schema"

// disclosureDocumentSchema only describes the envelope. The records inside are checked by a
// FieldSchema, where an integer never carries a fraction or an exponent.
const disclosureDocumentSchema = `{
  "type": "object",
  "required": ["disclosures"],
  "properties": {
    "disclosures": {"type": "array"}
  }
}`

// Kind is a JSON value kind a schema field may hold. Kinds combine as a bit set.
type Kind uint8

const (
	KindString Kind = 1 << iota
	KindInteger
	KindNull
)

// Field describes one key of a record.
type Field struct {
	Name     string
	Required bool
	Kinds    Kind
}

// FieldSchema is a tagged-field schema for flat JSON objects.
type FieldSchema []Field

// CookieSchema is the schema every disclosed storage item must match.
var CookieSchema = FieldSchema{
	{Name: "identifier", Required: true, Kinds: KindString},
	{Name: "type", Required: true, Kinds: KindString},
	{Name: "maxAgeSeconds", Required: true, Kinds: KindInteger | KindNull},
	{Name: "domain", Kinds: KindString | KindNull},
}

// IsValid reports whether record is a JSON object which has every required key and whose
// values all have an allowed kind. An absent optional key counts as null.
func (s FieldSchema) IsValid(record []byte) bool {
	if _, dataType, _, err := jsonparser.Get(record); err != nil || dataType != jsonparser.Object {
		return false
	}

	for _, field := range s {
		if !field.Required {
			continue
		}
		if _, _, _, err := jsonparser.Get(record, field.Name); err != nil {
			return false
		}
	}

	for _, field := range s {
		if kindOf(record, field.Name)&field.Kinds == 0 {
			return false
		}
	}
	return true
}

// kindOf returns 0 for values no schema can accept, such as objects, booleans or floats.
func kindOf(record []byte, key string) Kind {
	value, dataType, _, err := jsonparser.Get(record, key)
	if err == jsonparser.KeyPathNotFoundError {
		return KindNull
	}
	if err != nil {
		return 0
	}

	switch dataType {
	case jsonparser.String:
		return KindString
	case jsonparser.Null:
		return KindNull
	case jsonparser.Number:
		if _, err := jsonparser.ParseInt(value); err == nil || err == jsonparser.OverflowIntegerError {
			return KindInteger
		}
	}
	return 0
}

// DisclosureChecker validates a fetched disclosure document: first the envelope, then every record.
type DisclosureChecker struct {
	envelope *gojsonschema.Schema
	records  FieldSchema
}

// NewDisclosureChecker builds a checker for the given record schema.
func NewDisclosureChecker(records FieldSchema) *DisclosureChecker {
	envelope, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(disclosureDocumentSchema))
	if err != nil {
		glog.Fatalf("Failed to load the disclosure document schema: %v", err)
	}

	return &DisclosureChecker{
		envelope: envelope,
		records:  records,
	}
}

// Check returns a SchemaError if the document is not an object with a "disclosures" array, or if any
// record in that array fails the record schema. Failures are not itemized per record.
func (c *DisclosureChecker) Check(doc DisclosureDocument) error {
	result, err := c.envelope.Validate(gojsonschema.NewBytesLoader([]byte(doc)))
	if err != nil || !result.Valid() {
		return &errortypes.SchemaError{Message: invalidCookieSchema}
	}

	valid := true
	_, err = jsonparser.ArrayEach(doc, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if valid && (dataType != jsonparser.Object || !c.records.IsValid(value)) {
			valid = false
		}
	}, "disclosures")
	if err != nil || !valid {
		return &errortypes.SchemaError{Message: invalidCookieSchema}
	}
	return nil
}
