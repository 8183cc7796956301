package schema

import (
	"reflect"
	"strconv"
	"strings"
)

// LeadJSONSchema describes the accepted lead payload as a JSON Schema object.
// It is derived from the same declarations ValidateLead enforces.
func LeadJSONSchema() map[string]interface{} {
	return objectSchema("Lead", reflect.TypeOf(leadInput{}))
}

func objectSchema(title string, t reflect.Type) map[string]interface{} {
	properties := make(map[string]interface{}, t.NumField())
	required := make([]string, 0)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonName(f)
		if name == "" {
			continue
		}
		prop, isRequired := propertySchema(f)
		properties[name] = prop
		if isRequired {
			required = append(required, name)
		}
	}

	return map[string]interface{}{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"title":      title,
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func propertySchema(f reflect.StructField) (map[string]interface{}, bool) {
	kind := f.Type
	if kind.Kind() == reflect.Ptr {
		kind = kind.Elem()
	}
	typeName := jsonType(kind.Kind())
	isText := kind.Kind() == reflect.String

	prop := map[string]interface{}{
		"title": titleize(jsonName(f)),
	}
	if desc := f.Tag.Get("desc"); desc != "" {
		prop["description"] = desc
	}

	isRequired := false
	for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
		key, param, _ := strings.Cut(rule, "=")
		switch key {
		case "required":
			isRequired = true
		case "email":
			prop["format"] = "email"
		case "oneof":
			values := strings.Fields(param)
			enum := make([]interface{}, 0, len(values))
			for _, v := range values {
				enum = append(enum, v)
			}
			prop["enum"] = enum
		case "min":
			if isText {
				prop["minLength"] = number(param)
			} else {
				prop["minimum"] = number(param)
			}
		case "max":
			if isText {
				prop["maxLength"] = number(param)
			} else {
				prop["maximum"] = number(param)
			}
		case "gte":
			prop["minimum"] = number(param)
		}
	}

	if def, ok := f.Tag.Lookup("default"); ok {
		prop["type"] = typeName
		prop["default"] = defaultValue(kind.Kind(), def)
	} else if isRequired {
		prop["type"] = typeName
	} else {
		prop["type"] = []interface{}{typeName, "null"}
		prop["default"] = nil
	}
	return prop, isRequired
}

func jsonType(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	default:
		return "object"
	}
}

func number(param string) interface{} {
	if n, err := strconv.Atoi(param); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(param, 64); err == nil {
		return f
	}
	return param
}

func defaultValue(k reflect.Kind, raw string) interface{} {
	if k == reflect.Bool {
		b, err := strconv.ParseBool(raw)
		if err == nil {
			return b
		}
	}
	return raw
}

// titleize turns "spa_count" into "Spa Count".
func titleize(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
